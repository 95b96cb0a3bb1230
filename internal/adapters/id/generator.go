package id

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator issues short prefixed ids for runs and UUIDs for persisted audit rows.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) generate(prefix string) string {
	id, err := gonanoid.New(21)
	if err != nil {
		return prefix + "_" + uuid.NewString()
	}
	return prefix + "_" + id
}

// GenerateRunID returns an id such as "run_V1StGXR8_Z5jdHi6B-myT".
func (g *Generator) GenerateRunID() string {
	return g.generate("run")
}

func (g *Generator) GenerateRecordID() string {
	return uuid.NewString()
}
