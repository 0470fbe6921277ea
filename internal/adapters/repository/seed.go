package repository

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/ideas/internal/domain/model"
)

// Seed is the on-disk shape of a seed file:
//
//	weights:
//	  c1: 60
//	ideas:
//	  - {id: i1, creator_id: c1, title: Mobile app, votes: 12, status: approved}
//	signals:
//	  - {idea_id: i1, opportunity_score: 75, age: 25h}
//	  - {idea_id: i2, updated_at: "2024-06-01T10:00:00Z"}
type Seed struct {
	Weights map[string]int `koanf:"weights"`
	Ideas   []SeedIdea     `koanf:"ideas"`
	Signals []SeedSignal   `koanf:"signals"`
}

// SeedIdea is one idea row.
type SeedIdea struct {
	ID        string `koanf:"id"`
	CreatorID string `koanf:"creator_id"`
	Title     string `koanf:"title"`
	Votes     int    `koanf:"votes"`
	Status    string `koanf:"status"`
}

// SeedSignal is one signal row. Age, when set, wins over UpdatedAt and is
// measured back from the load time.
type SeedSignal struct {
	IdeaID           string        `koanf:"idea_id"`
	OpportunityScore *int          `koanf:"opportunity_score"`
	UpdatedAt        string        `koanf:"updated_at"`
	Age              time.Duration `koanf:"age"`
}

// ReadSeed parses the YAML seed file at path.
func ReadSeed(path string) (Seed, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Seed{}, fmt.Errorf("load seed file %s: %w", path, err)
	}
	var seed Seed
	if err := k.UnmarshalWithConf("", &seed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Seed{}, fmt.Errorf("unmarshal seed file %s: %w", path, err)
	}
	return seed, nil
}

// Apply writes the seed into s. now anchors signals given by age.
func (seed Seed) Apply(s *MemoryStore, now time.Time) error {
	for _, si := range seed.Ideas {
		if si.ID == "" || si.CreatorID == "" {
			return fmt.Errorf("seed idea %q: id and creator_id are required", si.ID)
		}
		status, ok := model.ParseStatus(si.Status)
		if !ok {
			return fmt.Errorf("seed idea %s: unknown status %q", si.ID, si.Status)
		}
		s.PutIdea(model.Idea{
			ID:        si.ID,
			CreatorID: si.CreatorID,
			Title:     si.Title,
			Votes:     si.Votes,
			Status:    status,
		})
	}
	for _, ss := range seed.Signals {
		if ss.IdeaID == "" {
			return fmt.Errorf("seed signal: idea_id is required")
		}
		updated := now
		switch {
		case ss.Age > 0:
			updated = now.Add(-ss.Age)
		case ss.UpdatedAt != "":
			t, err := time.Parse(time.RFC3339, ss.UpdatedAt)
			if err != nil {
				return fmt.Errorf("seed signal %s: updated_at: %w", ss.IdeaID, err)
			}
			updated = t
		}
		s.PutSignal(model.OpportunitySignal{
			IdeaID:           ss.IdeaID,
			OpportunityScore: ss.OpportunityScore,
			UpdatedAt:        updated.UTC(),
		})
	}
	for creatorID, w := range seed.Weights {
		s.mu.Lock()
		s.weights[creatorID] = w
		s.mu.Unlock()
	}
	return nil
}

// LoadSeed reads path and applies it to s.
func LoadSeed(s *MemoryStore, path string, now time.Time) error {
	seed, err := ReadSeed(path)
	if err != nil {
		return err
	}
	return seed.Apply(s, now)
}
