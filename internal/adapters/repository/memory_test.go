package repository

import (
	"context"
	"testing"
	"time"

	"github.com/okian/ideas/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store with ideas from two creators", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		s.PutIdea(model.Idea{ID: "i1", CreatorID: "c1", Title: "one", Votes: 3, Status: model.StatusApproved})
		s.PutIdea(model.Idea{ID: "i2", CreatorID: "c1", Title: "two", Votes: 9, Status: model.StatusCompleted})
		s.PutIdea(model.Idea{ID: "i3", CreatorID: "c1", Title: "three", Votes: 1, Status: model.StatusApproved})
		s.PutIdea(model.Idea{ID: "i4", CreatorID: "c2", Title: "other", Votes: 5, Status: model.StatusApproved})

		Convey("When listing approved ideas for c1", func() {
			ideas, err := s.ListIdeas(ctx, "c1", model.StatusApproved)

			Convey("Then only matching ideas are returned in insertion order", func() {
				So(err, ShouldBeNil)
				So(len(ideas), ShouldEqual, 2)
				So(ideas[0].ID, ShouldEqual, "i1")
				So(ideas[1].ID, ShouldEqual, "i3")
			})
		})

		Convey("When an idea is replaced", func() {
			s.PutIdea(model.Idea{ID: "i1", CreatorID: "c1", Title: "one", Votes: 30, Status: model.StatusApproved})
			ideas, err := s.ListIdeas(ctx, "c1", model.StatusApproved)

			Convey("Then it keeps its position and carries the new values", func() {
				So(err, ShouldBeNil)
				So(ideas[0].ID, ShouldEqual, "i1")
				So(ideas[0].Votes, ShouldEqual, 30)
			})
		})

		Convey("When getting an idea", func() {
			Convey("Then the owner sees it", func() {
				idea, err := s.GetIdea(ctx, "i2", "c1")
				So(err, ShouldBeNil)
				So(idea.Title, ShouldEqual, "two")
			})

			Convey("Then another creator gets ErrNotFound", func() {
				_, err := s.GetIdea(ctx, "i2", "c2")
				So(err, ShouldEqual, ErrNotFound)
			})

			Convey("Then an unknown id gets ErrNotFound", func() {
				_, err := s.GetIdea(ctx, "missing", "c1")
				So(err, ShouldEqual, ErrNotFound)
			})
		})

		Convey("When weights are read and written", func() {
			_, ok, err := s.Weight(ctx, "c1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)

			So(s.SetWeight(ctx, "c1", 40), ShouldBeNil)
			w, ok, err := s.Weight(ctx, "c1")

			Convey("Then the stored value is returned as is", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(w, ShouldEqual, 40)
			})
		})

		Convey("When signals are stored", func() {
			score := 70
			updated := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
			s.PutSignal(model.OpportunitySignal{IdeaID: "i1", OpportunityScore: &score, UpdatedAt: updated})
			s.PutSignal(model.OpportunitySignal{IdeaID: "i3", UpdatedAt: updated})
			score = 5

			Convey("Then a single lookup returns a private copy", func() {
				sig, err := s.Signal(ctx, "i1")
				So(err, ShouldBeNil)
				So(*sig.OpportunityScore, ShouldEqual, 70)
				So(sig.UpdatedAt, ShouldEqual, updated)

				*sig.OpportunityScore = 1
				again, err := s.Signal(ctx, "i1")
				So(err, ShouldBeNil)
				So(*again.OpportunityScore, ShouldEqual, 70)
			})

			Convey("Then batch results do not alias the store either", func() {
				got, err := s.Signals(ctx, []string{"i1"})
				So(err, ShouldBeNil)
				*got["i1"].OpportunityScore = 1
				again, err := s.Signals(ctx, []string{"i1"})
				So(err, ShouldBeNil)
				So(*again["i1"].OpportunityScore, ShouldEqual, 70)
			})

			Convey("Then a missing signal is ErrNotFound", func() {
				_, err := s.Signal(ctx, "i2")
				So(err, ShouldEqual, ErrNotFound)
			})

			Convey("Then the batch lookup omits ideas without a row", func() {
				got, err := s.Signals(ctx, []string{"i1", "i2", "i3"})
				So(err, ShouldBeNil)
				So(len(got), ShouldEqual, 2)
				So(got["i3"].OpportunityScore, ShouldBeNil)
				_, ok := got["i2"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then every call fails with the context error", func() {
				_, err := s.ListIdeas(cctx, "c1", model.StatusApproved)
				So(err, ShouldEqual, context.Canceled)
				_, err = s.GetIdea(cctx, "i1", "c1")
				So(err, ShouldEqual, context.Canceled)
				_, _, err = s.Weight(cctx, "c1")
				So(err, ShouldEqual, context.Canceled)
				So(s.SetWeight(cctx, "c1", 50), ShouldEqual, context.Canceled)
				_, err = s.Signal(cctx, "i1")
				So(err, ShouldEqual, context.Canceled)
				_, err = s.Signals(cctx, []string{"i1"})
				So(err, ShouldEqual, context.Canceled)
			})
		})
	})
}
