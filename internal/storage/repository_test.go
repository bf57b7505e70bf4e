package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"spending/internal/core"
)

type RepositoryTestSuite struct {
	suite.Suite
	repo *Repository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	repo, err := Open(s.ctx, Config{Type: "sqlite", Path: ":memory:"})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositoryTestSuite) TearDownTest() {
	s.repo.Close()
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) child(name string) core.Child {
	c, err := s.repo.CreateChild(s.ctx, name)
	s.Require().NoError(err)
	return c
}

func (s *RepositoryTestSuite) expense(childID int64, amount float64, date time.Time) core.Expense {
	e, err := s.repo.InsertExpense(s.ctx, core.Expense{
		Amount:      amount,
		Description: "item",
		Category:    core.CategoryCash,
		Currency:    "EUR",
		Date:        core.NewTimestamp(date),
		ChildID:     childID,
	})
	s.Require().NoError(err)
	return e
}

func (s *RepositoryTestSuite) TestChildren() {
	xav := s.child("Xav")
	emma := s.child("Emma")

	children, err := s.repo.ListChildren(s.ctx)
	s.Require().NoError(err)
	s.Equal([]core.Child{xav, emma}, children)

	got, err := s.repo.GetChild(s.ctx, emma.ID)
	s.Require().NoError(err)
	s.Equal("Emma", got.Name)

	got, err = s.repo.GetChildByName(s.ctx, "Xav")
	s.Require().NoError(err)
	s.Equal(xav.ID, got.ID)

	_, err = s.repo.GetChild(s.ctx, 999)
	s.ErrorIs(err, core.ErrChildNotFound)

	_, err = s.repo.CreateChild(s.ctx, "Xav")
	s.Error(err, "names are unique")
}

func (s *RepositoryTestSuite) TestListChildrenEmpty() {
	children, err := s.repo.ListChildren(s.ctx)
	s.Require().NoError(err)
	s.NotNil(children)
	s.Empty(children)
}

func (s *RepositoryTestSuite) TestExpenseRoundTrip() {
	c := s.child("Zoe")
	date := time.Date(2023, 10, 27, 10, 15, 30, 250000000, time.UTC)

	created, err := s.repo.InsertExpense(s.ctx, core.Expense{
		Amount:      12.75,
		Description: "Book",
		Category:    core.CategoryCard,
		Currency:    "MAD",
		Date:        core.NewTimestamp(date),
		ChildID:     c.ID,
	})
	s.Require().NoError(err)
	s.NotZero(created.ID)

	got, err := s.repo.GetExpense(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal(12.75, got.Amount)
	s.Equal("Book", got.Description)
	s.Equal(core.CategoryCard, got.Category)
	s.Equal("MAD", got.Currency)
	s.Equal(c.ID, got.ChildID)
	s.True(date.Equal(got.Date.Time), "got %s", got.Date)
	s.Equal("2023-10-27T10:15:30.250000", got.Date.String())
}

func (s *RepositoryTestSuite) TestListExpensesOrder() {
	c := s.child("Frankie")
	other := s.child("Emma")
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	oldest := s.expense(c.ID, 1, day.AddDate(0, 0, -2))
	tieA := s.expense(c.ID, 2, day)
	tieB := s.expense(c.ID, 3, day)
	s.expense(other.ID, 4, day.AddDate(0, 0, 1))

	expenses, err := s.repo.ListExpensesByChild(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(expenses, 3)
	s.Equal([]int64{tieB.ID, tieA.ID, oldest.ID},
		[]int64{expenses[0].ID, expenses[1].ID, expenses[2].ID})

	none, err := s.repo.ListExpensesByChild(s.ctx, 12345)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RepositoryTestSuite) TestUpdateAndDelete() {
	c := s.child("Xav")
	e := s.expense(c.ID, 10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	e.Amount = 11
	e.Currency = "GBP"
	s.Require().NoError(s.repo.UpdateExpense(s.ctx, e))

	got, err := s.repo.GetExpense(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(11.0, got.Amount)
	s.Equal("GBP", got.Currency)

	// Unchanged values still count as a match.
	s.Require().NoError(s.repo.UpdateExpense(s.ctx, got))

	s.Require().NoError(s.repo.DeleteExpense(s.ctx, e.ID))
	_, err = s.repo.GetExpense(s.ctx, e.ID)
	s.ErrorIs(err, core.ErrExpenseNotFound)

	s.ErrorIs(s.repo.DeleteExpense(s.ctx, e.ID), core.ErrNotFound)
	s.ErrorIs(s.repo.UpdateExpense(s.ctx, e), core.ErrExpenseNotFound)
}

func (s *RepositoryTestSuite) TestForeignKeyEnforced() {
	_, err := s.repo.InsertExpense(s.ctx, core.Expense{
		Amount:      1,
		Description: "orphan",
		Category:    core.CategoryCash,
		Currency:    "EUR",
		Date:        core.NewTimestamp(time.Now()),
		ChildID:     404,
	})
	s.Error(err)
}

func (s *RepositoryTestSuite) TestInTxRollsBack() {
	c := s.child("Zoe")
	boom := errors.New("boom")

	err := s.repo.InTx(s.ctx, func(tx Store) error {
		if _, err := tx.InsertExpense(s.ctx, core.Expense{
			Amount: 5, Description: "x", Category: core.CategoryCash, Currency: "EUR",
			Date: core.NewTimestamp(time.Now()), ChildID: c.ID,
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	expenses, err := s.repo.ListExpensesByChild(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(expenses)
}

func (s *RepositoryTestSuite) TestInTxCommits() {
	c := s.child("Zoe")

	var id int64
	err := s.repo.InTx(s.ctx, func(tx Store) error {
		if _, err := tx.GetChild(s.ctx, c.ID); err != nil {
			return err
		}
		e, err := tx.InsertExpense(s.ctx, core.Expense{
			Amount: 5, Description: "x", Category: core.CategoryCash, Currency: "EUR",
			Date: core.NewTimestamp(time.Now()), ChildID: c.ID,
		})
		id = e.ID
		return err
	})
	s.Require().NoError(err)

	_, err = s.repo.GetExpense(s.ctx, id)
	s.NoError(err)
}

func (s *RepositoryTestSuite) TestPing() {
	s.NoError(s.repo.Ping(s.ctx))
	s.Equal(DialectSQLite, s.repo.Dialect())
}

func (s *RepositoryTestSuite) TestCurrencyColumnDefault() {
	c := s.child("Emma")
	_, err := s.repo.db.ExecContext(s.ctx,
		"INSERT INTO expenses (amount, description, date, child_id) VALUES (?, ?, ?, ?)",
		3.5, "legacy", time.Date(2022, 5, 1, 8, 0, 0, 0, time.UTC), c.ID)
	s.Require().NoError(err)

	expenses, err := s.repo.ListExpensesByChild(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(expenses, 1)
	s.Equal("EUR", expenses[0].Currency)
	s.Equal(core.CategoryCash, expenses[0].Category)
}

func TestOpen_FileDatabaseMigratesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "spending.db")

	repo, err := Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := repo.CreateChild(ctx, "Xav"); err != nil {
		t.Fatalf("create child: %v", err)
	}
	repo.Close()

	repo, err = Open(ctx, Config{Path: path})
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer repo.Close()

	version, err := RunMigrations(ctx, repo.db)
	if err != nil {
		t.Fatalf("rerun migrations: %v", err)
	}
	if version != 2 {
		t.Fatalf("schema version = %d, want 2", version)
	}

	children, err := repo.ListChildren(ctx)
	if err != nil || len(children) != 1 {
		t.Fatalf("children after reopen = %v, %v", children, err)
	}
}
