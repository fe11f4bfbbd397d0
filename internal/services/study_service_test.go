package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdrill/internal/clock"
	"github.com/vytor/flashdrill/internal/errors"
	"github.com/vytor/flashdrill/internal/models"
	"github.com/vytor/flashdrill/internal/repository/sqlite"
	"github.com/vytor/flashdrill/internal/services"
	"github.com/vytor/flashdrill/internal/study"
	"github.com/vytor/flashdrill/internal/testutil"
	"github.com/vytor/flashdrill/internal/testutil/mocks"
)

type StudyServiceSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *clock.Fake
	groups *mocks.MockGroupRepository
	cards  *mocks.MockCardRepository
	svc    services.StudyService
}

func (s *StudyServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s.groups = new(mocks.MockGroupRepository)
	s.cards = new(mocks.MockCardRepository)
	s.svc = s.newService()
}

func (s *StudyServiceSuite) TearDownTest() {
	s.svc.Shutdown()
}

func (s *StudyServiceSuite) newService(opts ...services.StudyServiceOption) services.StudyService {
	opts = append([]services.StudyServiceOption{services.WithStudyClock(s.clock)}, opts...)
	return services.NewStudyService(s.ctx, s.groups, s.cards, study.DefaultConfig(), opts...)
}

func (s *StudyServiceSuite) requireCode(err error, code string) {
	s.Require().Error(err)
	appErr, ok := errors.As(err)
	s.Require().True(ok, "expected AppError, got %v", err)
	s.Assert().Equal(code, appErr.Code)
}

func (s *StudyServiceSuite) withCards(groupID int64, cards ...models.Card) {
	s.groups.On("Get", mock.Anything, groupID).Return(&models.Group{ID: groupID, Name: "g"}, nil)
	s.cards.On("List", mock.Anything, models.CardFilter{GroupID: groupID}).Return(cards, nil)
	for _, c := range cards {
		s.cards.On("Get", mock.Anything, groupID, c.ID).Return(&c, nil)
	}
}

func (s *StudyServiceSuite) TestStart_MissingGroup() {
	s.groups.On("Get", mock.Anything, int64(3)).Return(nil, sql.ErrNoRows).Once()

	_, err := s.svc.Start(s.ctx, 3, services.StudyOptions{Mode: study.Learn})
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *StudyServiceSuite) TestStart_ShowsFirstCard() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})

	timeout := 20
	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn, TimeoutSeconds: &timeout})
	s.Require().NoError(err)
	s.Assert().NotEmpty(view.ID)
	s.Assert().Equal("q", view.Question)
	s.Assert().Equal(study.Filtering, view.Status.Stage)
	s.Assert().Equal(1, view.Status.Position)
	s.Assert().Equal(20, view.Config.TimeoutSeconds)
	s.Assert().Equal(20, view.Status.Countdown)

	events, err := s.svc.Events(s.ctx, view.ID, 0)
	s.Require().NoError(err)
	s.Require().NotEmpty(events)
	s.Assert().Equal(study.EventCardShown, events[0].Kind)
	s.Assert().Equal(view.LastSeq, events[len(events)-1].Seq)
}

func (s *StudyServiceSuite) TestStart_NothingToReview() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a", CorrectCount: 2, Mastered: true})

	_, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Review})
	s.requireCode(err, errors.ErrCodeConflict)
}

func (s *StudyServiceSuite) TestAnswer_ScoresAndFinishesRound() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})
	s.cards.On("SaveStats", mock.Anything, int64(1), mock.Anything).Return(nil)

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	view, err = s.svc.Answer(s.ctx, view.ID, view.Status.Position, "known")
	s.Require().NoError(err)
	s.Assert().Equal(study.Idle, view.Status.Stage)
	s.Assert().Empty(view.Question)

	saved := s.cards.Calls[len(s.cards.Calls)-1].Arguments.Get(2).([]models.Card)
	s.Require().Len(saved, 1)
	s.Assert().Equal(1, saved[0].CorrectCount)
}

func (s *StudyServiceSuite) TestAnswer_StaleDrawIsIgnored() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	after, err := s.svc.Answer(s.ctx, view.ID, view.Status.Position+5, "wrong")
	s.Require().NoError(err)
	s.Assert().Equal(study.Filtering, after.Status.Stage)
	s.cards.AssertNotCalled(s.T(), "SaveStats", mock.Anything, mock.Anything, mock.Anything)
}

func (s *StudyServiceSuite) TestAnswer_UnknownOutcome() {
	_, err := s.svc.Answer(s.ctx, "whatever", 1, "maybe")
	s.requireCode(err, errors.ErrCodeValidation)
}

func (s *StudyServiceSuite) TestAnswer_SaveFailure() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})
	s.cards.On("SaveStats", mock.Anything, int64(1), mock.Anything).Return(stderrors.New("disk full"))

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	_, err = s.svc.Answer(s.ctx, view.ID, view.Status.Position, "known")
	s.requireCode(err, errors.ErrCodeInternal)

	again, err := s.svc.Get(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Assert().Equal("q", again.Question)
	s.Assert().False(again.Status.AwaitingAnswer)
}

func (s *StudyServiceSuite) TestReveal_PublishesAnswer() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "the answer"})

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	_, err = s.svc.Reveal(s.ctx, view.ID, view.Status.Position)
	s.Require().NoError(err)

	events, err := s.svc.Events(s.ctx, view.ID, view.LastSeq)
	s.Require().NoError(err)
	var revealed []string
	for _, e := range events {
		if e.Kind == study.EventAnswerRevealed {
			revealed = append(revealed, e.Text)
		}
	}
	s.Assert().Equal([]string{"the answer"}, revealed)
}

func (s *StudyServiceSuite) TestTimeout_SavesThroughBaseContext() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})
	s.cards.On("SaveStats", mock.Anything, int64(1), mock.Anything).Return(nil)

	reqCtx, cancel := context.WithCancel(s.ctx)
	view, err := s.svc.Start(reqCtx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)
	cancel()

	s.clock.Advance(time.Duration(study.DefaultTimeoutSeconds) * time.Second)

	s.cards.AssertCalled(s.T(), "SaveStats", mock.Anything, int64(1), mock.Anything)
	saveCtx := s.cards.Calls[len(s.cards.Calls)-1].Arguments.Get(0).(context.Context)
	s.Assert().NoError(saveCtx.Err())

	got, err := s.svc.Get(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Assert().True(got.Status.AwaitingAnswer)
}

func (s *StudyServiceSuite) TestStop_Unregisters() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Stop(s.ctx, view.ID))
	_, err = s.svc.Get(s.ctx, view.ID)
	s.requireCode(err, errors.ErrCodeNotFound)

	err = s.svc.Stop(s.ctx, view.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *StudyServiceSuite) TestStopGroup() {
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})
	s.withCards(2, models.Card{ID: 2, GroupID: 2, Question: "q", Answer: "a"})

	one, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)
	two, err := s.svc.Start(s.ctx, 2, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	s.svc.StopGroup(s.ctx, 1)

	_, err = s.svc.Get(s.ctx, one.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
	_, err = s.svc.Get(s.ctx, two.ID)
	s.Assert().NoError(err)
}

func (s *StudyServiceSuite) TestMaxSessions() {
	s.svc = s.newService(services.WithMaxSessions(1))
	s.withCards(1, models.Card{ID: 1, GroupID: 1, Question: "q", Answer: "a"})
	s.cards.On("SaveStats", mock.Anything, int64(1), mock.Anything).Return(nil)

	first, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	_, err = s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.requireCode(err, errors.ErrCodeUnavailable)

	// A finished session makes room.
	_, err = s.svc.Answer(s.ctx, first.ID, first.Status.Position, "known")
	s.Require().NoError(err)

	_, err = s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)
	_, err = s.svc.Get(s.ctx, first.ID)
	s.requireCode(err, errors.ErrCodeNotFound)
}

func (s *StudyServiceSuite) TestAnswer_DeletedCardIsSkipped() {
	s.groups.On("Get", mock.Anything, int64(1)).Return(&models.Group{ID: 1, Name: "g"}, nil)
	s.cards.On("List", mock.Anything, models.CardFilter{GroupID: 1}).Return([]models.Card{
		{ID: 1, GroupID: 1, Question: "q1", Answer: "a1"},
		{ID: 2, GroupID: 1, Question: "q2", Answer: "a2"},
	}, nil)
	s.cards.On("Get", mock.Anything, int64(1), mock.Anything).Return(nil, sql.ErrNoRows)

	view, err := s.svc.Start(s.ctx, 1, services.StudyOptions{Mode: study.Learn})
	s.Require().NoError(err)

	// Both cards are gone from the store, so neither is scored.
	for view.Status.Stage != study.Idle {
		view, err = s.svc.Answer(s.ctx, view.ID, view.Status.Position, "known")
		s.Require().NoError(err)
	}
	s.cards.AssertNotCalled(s.T(), "SaveStats", mock.Anything, mock.Anything, mock.Anything)
}

func TestStudyServiceSuite(t *testing.T) {
	suite.Run(t, new(StudyServiceSuite))
}

func TestStudyService_KeepsCardWritesMadeDuringRound(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)

	groupRepo := sqlite.NewGroupRepository(db)
	cardRepo := sqlite.NewCardRepository(db)
	groupID := testutil.InsertGroup(t, db, "Default")
	ids, err := cardRepo.Append(ctx, groupID, testutil.Cards(3))
	require.NoError(t, err)
	require.NoError(t, cardRepo.SaveStats(ctx, groupID, []models.Card{
		{ID: ids[0], IncorrectCount: 3},
		{ID: ids[1], IncorrectCount: 3},
		{ID: ids[2], IncorrectCount: 3},
	}))

	svc := services.NewStudyService(ctx, groupRepo, cardRepo, study.DefaultConfig(),
		services.WithStudyClock(clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	defer svc.Shutdown()

	view, err := svc.Start(ctx, groupID, services.StudyOptions{Mode: study.Learn})
	require.NoError(t, err)

	current := view.Status.CurrentCardID
	var deleted int64
	for _, id := range ids {
		require.NoError(t, cardRepo.UpdateText(ctx, groupID, id, fmt.Sprintf("edited %d", id), "answer"))
		if id != current && deleted == 0 {
			deleted = id
		}
	}
	_, err = cardRepo.ResetStats(ctx, groupID, ids)
	require.NoError(t, err)
	_, err = cardRepo.Delete(ctx, groupID, []int64{deleted})
	require.NoError(t, err)

	for view.Status.Stage != study.Idle {
		view, err = svc.Answer(ctx, view.ID, view.Status.Position, "known")
		require.NoError(t, err)
	}

	cards, err := cardRepo.List(ctx, models.CardFilter{GroupID: groupID})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, c := range cards {
		assert.NotEqual(t, deleted, c.ID)
		assert.Equal(t, fmt.Sprintf("edited %d", c.ID), c.Question)
		assert.Equal(t, "answer", c.Answer)
		assert.Equal(t, 1, c.CorrectCount)
		assert.Zero(t, c.IncorrectCount)
		assert.Zero(t, c.UnsureCount)
	}
}
