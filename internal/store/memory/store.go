// Package memory provides process-local repositories with the same
// semantics as the postgres store. Useful for tests and single-node runs.
package memory

import "github.com/gosuda/caseflow/internal/domain"

type Store struct {
	tasks    *TaskRepo
	cases    *CaseRepo
	activity *ActivityRepo
	links    *MessengerLinkRepo
}

func New() *Store {
	return &Store{
		tasks:    NewTaskRepo(),
		cases:    NewCaseRepo(),
		activity: NewActivityRepo(),
		links:    NewMessengerLinkRepo(),
	}
}

func (s *Store) Close() {}

func (s *Store) Tasks() domain.TaskRepository                   { return s.tasks }
func (s *Store) Cases() domain.CaseRepository                   { return s.cases }
func (s *Store) Activity() domain.ActivityRepository            { return s.activity }
func (s *Store) MessengerLinks() domain.MessengerLinkRepository { return s.links }
