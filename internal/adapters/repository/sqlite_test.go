package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/ideas/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func seedIdea(ctx context.Context, s *SQLiteStore, idea model.Idea, createdAt int64) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ideas (id, creator_id, title, votes, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.CreatorID, idea.Title, idea.Votes, string(idea.Status), createdAt)
	So(err, ShouldBeNil)
}

func seedSignal(ctx context.Context, s *SQLiteStore, ideaID string, score *int, updated time.Time) {
	var v any
	if score != nil {
		v = *score
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO opportunity_signals (idea_id, opportunity_score, updated_at) VALUES (?, ?, ?)`,
		ideaID, v, updated.UnixMilli())
	So(err, ShouldBeNil)
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a fresh SQLite database", t, func() {
		ctx := context.Background()
		s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ideas.db"))
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		seedIdea(ctx, s, model.Idea{ID: "i2", CreatorID: "c1", Title: "later", Votes: 8, Status: model.StatusApproved}, 200)
		seedIdea(ctx, s, model.Idea{ID: "i1", CreatorID: "c1", Title: "earlier", Votes: 2, Status: model.StatusApproved}, 100)
		seedIdea(ctx, s, model.Idea{ID: "i3", CreatorID: "c1", Title: "done", Votes: 20, Status: model.StatusCompleted}, 300)
		seedIdea(ctx, s, model.Idea{ID: "i4", CreatorID: "c2", Title: "foreign", Votes: 1, Status: model.StatusApproved}, 400)

		Convey("When listing approved ideas", func() {
			ideas, err := s.ListIdeas(ctx, "c1", model.StatusApproved)

			Convey("Then they come back in creation order", func() {
				So(err, ShouldBeNil)
				So(len(ideas), ShouldEqual, 2)
				So(ideas[0].ID, ShouldEqual, "i1")
				So(ideas[1].ID, ShouldEqual, "i2")
				So(ideas[1].Status, ShouldEqual, model.StatusApproved)
			})
		})

		Convey("When getting an idea owned by someone else", func() {
			_, err := s.GetIdea(ctx, "i4", "c1")

			Convey("Then it is not found", func() {
				So(err, ShouldEqual, ErrNotFound)
			})
		})

		Convey("When getting an owned idea", func() {
			idea, err := s.GetIdea(ctx, "i3", "c1")

			Convey("Then every column is mapped", func() {
				So(err, ShouldBeNil)
				So(idea.Title, ShouldEqual, "done")
				So(idea.Votes, ShouldEqual, 20)
				So(idea.Status, ShouldEqual, model.StatusCompleted)
			})
		})

		Convey("When the weight is written twice", func() {
			_, ok, err := s.Weight(ctx, "c1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			So(s.SetWeight(ctx, "c1", 35), ShouldBeNil)
			So(s.SetWeight(ctx, "c1", 65), ShouldBeNil)
			w, ok, err := s.Weight(ctx, "c1")

			Convey("Then the last write wins", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(w, ShouldEqual, 65)
			})
		})

		Convey("When signals exist for some ideas", func() {
			updated := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
			seedSignal(ctx, s, "i1", intPtr(75), updated)
			seedSignal(ctx, s, "i2", nil, updated)

			Convey("Then a single lookup restores score and timestamp", func() {
				sig, err := s.Signal(ctx, "i1")
				So(err, ShouldBeNil)
				So(*sig.OpportunityScore, ShouldEqual, 75)
				So(sig.UpdatedAt.Equal(updated), ShouldBeTrue)
			})

			Convey("Then a missing signal is ErrNotFound", func() {
				_, err := s.Signal(ctx, "i3")
				So(err, ShouldEqual, ErrNotFound)
			})

			Convey("Then the batch query returns only existing rows", func() {
				got, err := s.Signals(ctx, []string{"i1", "i2", "i3"})
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got["i2"].OpportunityScore, ShouldBeNil)
			})

			Convey("Then an empty batch returns an empty map", func() {
				got, err := s.Signals(ctx, nil)
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 0)
			})
		})
	})

	Convey("Given an in-memory database", t, func() {
		ctx := context.Background()
		s, err := OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		Convey("When a weight is stored", func() {
			So(s.SetWeight(ctx, "c1", 50), ShouldBeNil)
			w, ok, err := s.Weight(ctx, "c1")

			Convey("Then it can be read back", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(w, ShouldEqual, 50)
			})
		})
	})
}

func TestSQLiteMemoryIsolation(t *testing.T) {
	Convey("Given two in-memory databases", t, func() {
		ctx := context.Background()
		a, err := OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)
		b, err := OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)
		Reset(func() {
			_ = a.Close()
			_ = b.Close()
		})

		Convey("When the first one stores a weight and an idea", func() {
			So(a.SetWeight(ctx, "c1", 42), ShouldBeNil)
			seedIdea(ctx, a, model.Idea{ID: "i1", CreatorID: "c1", Votes: 3, Status: model.StatusApproved}, 1)

			Convey("Then the second one sees neither", func() {
				_, ok, err := b.Weight(ctx, "c1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
				_, err = b.GetIdea(ctx, "i1", "c1")
				So(err, ShouldEqual, ErrNotFound)
			})
		})
	})
}

func TestSQLiteSignalsLargeBatch(t *testing.T) {
	Convey("Given more idea ids than SQLite allows bound parameters", t, func() {
		ctx := context.Background()
		s, err := OpenSQLite(ctx, ":memory:")
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		seedSignal(ctx, s, "idea-39999", intPtr(12), time.Now())
		ids := make([]string, 40000)
		for i := range ids {
			ids[i] = fmt.Sprintf("idea-%d", i)
		}

		Convey("When the batch is fetched", func() {
			got, err := s.Signals(ctx, ids)

			Convey("Then one query still answers it", func() {
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 1)
				So(*got["idea-39999"].OpportunityScore, ShouldEqual, 12)
			})
		})
	})
}
