package main

// Seed the skill catalog from a YAML file:
//   go run ./cmd/seedskills -file cmd/seedskills/skills.yaml

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"jobmatch-backend/internal/bootstrap"
	"jobmatch-backend/internal/shared/config"
	"jobmatch-backend/internal/shared/telemetry"
	"jobmatch-backend/internal/transfer"
)

type catalog struct {
	Skills []transfer.SkillPayload `yaml:"skills"`
}

func main() {
	defer telemetry.Sync()

	path := flag.String("file", "skills.yaml", "YAML skill catalog")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	skills, err := loadCatalog(f)
	f.Close()
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	app, err := bootstrap.Build(config.Load())
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	res, err := app.Service.SeedSkills(context.Background(), skills)
	if err != nil {
		log.Fatalf("seed skills: %v", err)
	}
	telemetry.Info("seedskills.done", map[string]any{
		"file":    *path,
		"created": res.Created,
		"updated": res.Updated,
	})
}

// loadCatalog decodes a catalog and rejects unknown keys, blank names and
// names repeated within the file.
func loadCatalog(r io.Reader) ([]transfer.SkillPayload, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	seen := make(map[string]int, len(c.Skills))
	for i, s := range c.Skills {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			return nil, fmt.Errorf("skills[%d]: name is required", i)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("skills[%d]: %q repeats skills[%d]", i, s.Name, prev)
		}
		seen[name] = i
	}
	return c.Skills, nil
}
