package memkv

import (
	"testing"

	"objectdb/kv"
	"objectdb/kv/kvtest"
)

func TestStoreConformsToEngine(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Engine { return New() })
}
