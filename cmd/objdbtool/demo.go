package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"objectdb/codec"
	"objectdb/kv/memkv"
	"objectdb/schema"
	"objectdb/schemaregistry"
	"objectdb/translator"
	"objectdb/txn"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run a small create/read/delete walkthrough against an in-memory engine",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	s := schema.New()
	s.AddObjectType(&schema.ObjectType{
		Name:      "Person",
		StorageID: 1,
		Fields: []*schema.Field{
			{
				Name: "name", StorageID: 2, Kind: schema.FieldSimple,
				Simple: &schema.SimpleField{Scalar: schema.Scalar{Encoding: schema.KindString}, Indexed: true},
			},
			{
				Name: "best_friend", StorageID: 3, Kind: schema.FieldSimple,
				Simple: &schema.SimpleField{
					Indexed: true,
					Scalar: schema.Scalar{
						Encoding: schema.KindReference,
						Nullable: true,
						Reference: &schema.ReferenceOptions{
							AllowedTypes:  []string{"Person"},
							InverseDelete: schema.InverseDeleteUnreference,
							AllowDangling: true,
						},
					},
				},
			},
		},
	})
	if err := s.LockDown(); err != nil {
		return fmt.Errorf("locking demo schema: %w", err)
	}

	registry := schemaregistry.New()
	if _, err := registry.Register(s); err != nil {
		return fmt.Errorf("registering demo schema: %w", err)
	}

	ctx := context.Background()
	engine := memkv.New()

	bob := codec.NewObjID(1, 1)
	alice := codec.NewObjID(1, 2)

	tx, err := txn.Begin(ctx, engine, registry)
	if err != nil {
		return err
	}
	if err := tx.CreateObject("Person", bob, map[string]translator.FieldState{
		"name": {Simple: &translator.Value{Str: "bob"}},
	}); err != nil {
		return err
	}
	if err := tx.CreateObject("Person", alice, map[string]translator.FieldState{
		"name":        {Simple: &translator.Value{Str: "alice"}},
		"best_friend": {Simple: &translator.Value{ObjID: bob}},
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Println("created bob and alice, alice.best_friend = bob")

	tx2, err := txn.Begin(ctx, engine, registry)
	if err != nil {
		return err
	}
	if err := tx2.DeleteObject("Person", bob); err != nil {
		return err
	}
	if err := tx2.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Println("deleted bob")

	tx3, err := txn.Begin(ctx, engine, registry)
	if err != nil {
		return err
	}
	state, ok, err := tx3.ReadObject("Person", alice)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("alice unexpectedly missing")
	}
	if state.Fields["best_friend"].Simple == nil || !state.Fields["best_friend"].Simple.Null {
		return fmt.Errorf("expected alice.best_friend to be cleared by inverse-delete unreference")
	}
	fmt.Println("alice.best_friend is now null, as inverse-delete unreference requires")
	return nil
}
