package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository"
	"github.com/vytor/flashdrill/internal/repository/sqlite"
	"github.com/vytor/flashdrill/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db      *sql.DB
	repo    repository.CardRepository
	groupID int64
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db)
	s.groupID = testutil.InsertGroup(s.T(), s.db, "Default")
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) seed(n int) []int64 {
	ids, err := s.repo.Append(context.Background(), s.groupID, testutil.Cards(n))
	s.Require().NoError(err)
	s.Require().Len(ids, n)
	return ids
}

func (s *CardRepositorySuite) questions() []string {
	cards, err := s.repo.List(context.Background(), models.CardFilter{GroupID: s.groupID})
	s.Require().NoError(err)
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Question
	}
	return out
}

func (s *CardRepositorySuite) TestAppend_KeepsOrderAcrossCalls() {
	s.seed(2)
	_, err := s.repo.Append(context.Background(), s.groupID, []models.Card{{Question: "q3", Answer: "a3"}})
	s.Require().NoError(err)

	s.Assert().Equal([]string{"q1", "q2", "q3"}, s.questions())

	cards, err := s.repo.List(context.Background(), models.CardFilter{GroupID: s.groupID})
	s.Require().NoError(err)
	s.Assert().Equal(0, cards[0].Position)
	s.Assert().Equal(2, cards[2].Position)
	s.Assert().False(cards[0].CreatedAt.IsZero())
}

func (s *CardRepositorySuite) TestList_Filters() {
	ctx := context.Background()
	ids := s.seed(4)
	s.Require().NoError(s.repo.SaveStats(ctx, s.groupID, []models.Card{
		{ID: ids[0], Question: "q1", Answer: "a1", CorrectCount: 2, Mastered: true},
		{ID: ids[1], Question: "q2", Answer: "a2", IncorrectCount: 1},
		{ID: ids[2], Question: "q3", Answer: "a3", UnsureCount: 1, CorrectCount: 1, IncorrectCount: 1},
	}))

	mastered := true
	cards, err := s.repo.List(ctx, models.CardFilter{GroupID: s.groupID, Mastered: &mastered})
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Assert().Equal(ids[0], cards[0].ID)

	cards, err = s.repo.List(ctx, models.CardFilter{GroupID: s.groupID, NeedsReview: true})
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal(ids[1], cards[0].ID)
	s.Assert().Equal(ids[2], cards[1].ID)

	cards, err = s.repo.List(ctx, models.CardFilter{GroupID: s.groupID, IDs: []int64{ids[3], ids[0]}})
	s.Require().NoError(err)
	s.Assert().Len(cards, 2)

	cards, err = s.repo.List(ctx, models.CardFilter{GroupID: s.groupID, Limit: 2, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal(ids[1], cards[0].ID)

	other := testutil.InsertGroup(s.T(), s.db, "Other")
	cards, err = s.repo.List(ctx, models.CardFilter{GroupID: other})
	s.Require().NoError(err)
	s.Assert().Empty(cards)
}

func (s *CardRepositorySuite) TestGet() {
	ids := s.seed(1)

	card, err := s.repo.Get(context.Background(), s.groupID, ids[0])
	s.Require().NoError(err)
	s.Assert().Equal("q1", card.Question)

	_, err = s.repo.Get(context.Background(), s.groupID+1, ids[0])
	s.Assert().ErrorIs(err, sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestSaveStats_WritesOnlyCounters() {
	ctx := context.Background()
	ids := s.seed(3)

	_, err := s.repo.Delete(ctx, s.groupID, []int64{ids[1]})
	s.Require().NoError(err)

	err = s.repo.SaveStats(ctx, s.groupID, []models.Card{
		{ID: ids[0], Question: "stale", Answer: "stale", CorrectCount: 1, UnsureCount: 1, IncorrectCount: 2},
		{ID: ids[1], Question: "q2", Answer: "a2", IncorrectCount: 1},
		{Question: "new", Answer: "card"},
	})
	s.Require().NoError(err)

	s.Assert().Equal([]string{"q1", "q3"}, s.questions())
	card, err := s.repo.Get(ctx, s.groupID, ids[0])
	s.Require().NoError(err)
	s.Assert().Equal("a1", card.Answer)
	s.Assert().Equal(1, card.CorrectCount)
	s.Assert().Equal(1, card.UnsureCount)
	s.Assert().Equal(2, card.IncorrectCount)
	s.Assert().Equal(0, card.Position)
}

func (s *CardRepositorySuite) TestSaveStats_IgnoresCardsOfOtherGroups() {
	ctx := context.Background()
	ids := s.seed(1)
	other := testutil.InsertGroup(s.T(), s.db, "Other")

	s.Require().NoError(s.repo.SaveStats(ctx, other, []models.Card{{ID: ids[0], CorrectCount: 5}}))

	card, err := s.repo.Get(ctx, s.groupID, ids[0])
	s.Require().NoError(err)
	s.Assert().Zero(card.CorrectCount)
}

func (s *CardRepositorySuite) TestUpdateText() {
	ctx := context.Background()
	ids := s.seed(1)

	s.Require().NoError(s.repo.UpdateText(ctx, s.groupID, ids[0], "Q", "A"))
	card, err := s.repo.Get(ctx, s.groupID, ids[0])
	s.Require().NoError(err)
	s.Assert().Equal("Q", card.Question)
	s.Assert().Equal("A", card.Answer)

	s.Assert().ErrorIs(s.repo.UpdateText(ctx, s.groupID, 9999, "Q", "A"), sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestMove() {
	ctx := context.Background()
	ids := s.seed(3)

	s.Require().NoError(s.repo.Move(ctx, s.groupID, ids[2], -1))
	s.Assert().Equal([]string{"q1", "q3", "q2"}, s.questions())

	s.Require().NoError(s.repo.Move(ctx, s.groupID, ids[0], 1))
	s.Assert().Equal([]string{"q3", "q1", "q2"}, s.questions())

	s.Require().NoError(s.repo.Move(ctx, s.groupID, ids[2], -1))
	s.Assert().Equal([]string{"q3", "q1", "q2"}, s.questions())

	s.Assert().ErrorIs(s.repo.Move(ctx, s.groupID, 9999, 1), sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestDeleteResetAndClear() {
	ctx := context.Background()
	ids := s.seed(3)
	s.Require().NoError(s.repo.SaveStats(ctx, s.groupID, []models.Card{
		{ID: ids[0], Question: "q1", Answer: "a1", CorrectCount: 2, Mastered: true},
		{ID: ids[1], Question: "q2", Answer: "a2", IncorrectCount: 3},
	}))

	n, err := s.repo.ResetStats(ctx, s.groupID, []int64{ids[0], ids[1]})
	s.Require().NoError(err)
	s.Assert().Equal(int64(2), n)
	stats, err := s.repo.Stats(ctx, s.groupID)
	s.Require().NoError(err)
	s.Assert().Equal(models.CardStats{TotalCards: 3}, *stats)

	n, err = s.repo.Delete(ctx, s.groupID, []int64{ids[0]})
	s.Require().NoError(err)
	s.Assert().Equal(int64(1), n)

	n, err = s.repo.Delete(ctx, s.groupID, nil)
	s.Require().NoError(err)
	s.Assert().Zero(n)

	n, err = s.repo.Clear(ctx, s.groupID)
	s.Require().NoError(err)
	s.Assert().Equal(int64(2), n)
	s.Assert().Empty(s.questions())
}

func (s *CardRepositorySuite) TestStats() {
	ctx := context.Background()
	ids := s.seed(3)
	s.Require().NoError(s.repo.SaveStats(ctx, s.groupID, []models.Card{
		{ID: ids[0], Question: "q1", CorrectCount: 2, Mastered: true},
		{ID: ids[1], Question: "q2", CorrectCount: 1, IncorrectCount: 1, UnsureCount: 1},
	}))

	stats, err := s.repo.Stats(ctx, s.groupID)
	s.Require().NoError(err)
	s.Assert().Equal(models.CardStats{
		TotalCards:     3,
		CorrectTotal:   3,
		UnsureTotal:    1,
		IncorrectTotal: 1,
		MasteredCards:  1,
		ReviewCards:    1,
	}, *stats)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
