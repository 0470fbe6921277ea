package model_test

import (
	"encoding/json"
	"testing"
	"time"

	model "github.com/okian/ideas/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseStatus(t *testing.T) {
	convey.Convey("Given status strings from a query parameter", t, func() {
		convey.Convey("When the value is empty", func() {
			s, ok := model.ParseStatus("")

			convey.Convey("Then it defaults to approved", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s, convey.ShouldEqual, model.StatusApproved)
			})
		})

		convey.Convey("When the value uses mixed case and spaces", func() {
			s, ok := model.ParseStatus("  Completed ")

			convey.Convey("Then it is normalized", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s, convey.ShouldEqual, model.StatusCompleted)
				convey.So(s.Rankable(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the value is a non-rankable state", func() {
			s, ok := model.ParseStatus("pending")

			convey.Convey("Then it parses but is not rankable", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(s.Rankable(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the value is unknown", func() {
			_, ok := model.ParseStatus("archived")

			convey.Convey("Then ok is false", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}

func TestOpportunitySignalJSON(t *testing.T) {
	convey.Convey("Given a signal without a score", t, func() {
		sig := model.OpportunitySignal{IdeaID: "i1", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}

		convey.Convey("When encoding to JSON", func() {
			raw, err := json.Marshal(sig)

			convey.Convey("Then the score is an explicit null", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldEqual, `{"idea_id":"i1","opportunity_score":null,"updated_at":"2024-01-02T03:04:05Z"}`)
			})
		})
	})
}
