package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/ginjaninja78/payroll-bank-splitter/internal/types"
)

type StoreSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.store = New()
	s.store.ReplaceStage(types.StageSplit, []types.Artifact{
		{Name: "b.xlsx", Content: []byte("b")},
		{Name: "a.xlsx", Content: []byte("a")},
	})
	s.store.ReplaceStage(types.StageSummary, []types.Artifact{{Name: "Summary_Report_1.xlsx"}})
	s.store.ReplaceStage(types.StageConvert, []types.Artifact{
		{Name: "b.txt"}, {Name: "b.csv"}, {Name: "a.txt"}, {Name: "a.csv"},
	})
}

func (s *StoreSuite) TestSessionID() {
	_, err := uuid.Parse(s.store.SessionID())
	s.NoError(err)
	s.NotEqual(s.store.SessionID(), New().SessionID())
}

func (s *StoreSuite) TestListKeepsCreationOrder() {
	split := s.store.List(types.StageSplit)
	s.Require().Len(split, 2)
	s.Equal("b.xlsx", split[0].Name)
	s.Equal(types.StageSplit, split[0].Stage)

	s.Equal([]string{"a.xlsx", "b.xlsx"}, s.store.Names(types.StageSplit))
	s.Len(s.store.List(0), 7)
	s.Equal(7, s.store.Len())
}

func (s *StoreSuite) TestReplaceSplitClearsDownstream() {
	s.store.ReplaceStage(types.StageSplit, []types.Artifact{{Name: "c.xlsx"}})

	s.Equal([]string{"c.xlsx"}, s.store.Names(0))
	s.Empty(s.store.List(types.StageSummary))
	s.Empty(s.store.List(types.StageConvert))
}

func (s *StoreSuite) TestReplaceConvertKeepsOtherStages() {
	s.store.ReplaceStage(types.StageConvert, []types.Artifact{{Name: "c.txt"}})

	s.Len(s.store.List(types.StageSplit), 2)
	s.Len(s.store.List(types.StageSummary), 1)
	s.Equal([]string{"c.txt"}, s.store.Names(types.StageConvert))
}

func (s *StoreSuite) TestReplaceSummaryKeepsConvert() {
	s.store.ReplaceStage(types.StageSummary, nil)

	s.Empty(s.store.List(types.StageSummary))
	s.Len(s.store.List(types.StageConvert), 4)
}

func (s *StoreSuite) TestDeleteTextIsIdempotent() {
	s.Equal(2, s.store.DeleteText())
	s.Equal(0, s.store.DeleteText())

	s.Equal([]string{"a.csv", "b.csv"}, s.store.Names(types.StageConvert))
	s.Len(s.store.List(types.StageSplit), 2)
}

func (s *StoreSuite) TestAppendReplacesSameName() {
	s.store.Append(types.Artifact{Name: "b.xlsx", Content: []byte("new"), Stage: types.StageSplit})

	a, ok := s.store.Get("b.xlsx")
	s.Require().True(ok)
	s.Equal([]byte("new"), a.Content)

	split := s.store.List(types.StageSplit)
	s.Equal("a.xlsx", split[0].Name)
	s.Equal("b.xlsx", split[1].Name)
	s.Equal(7, s.store.Len())
}

func (s *StoreSuite) TestGetMissing() {
	_, ok := s.store.Get("nope")
	s.False(ok)
}
