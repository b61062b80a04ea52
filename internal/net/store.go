package net

// SessionStore tracks live sessions for the game loop.
// Accessed only from the game loop goroutine — no locks needed.
type SessionStore struct {
	byID map[uint64]*Session
	list []*Session // adoption order, for deterministic per-tick iteration
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(s *Session) {
	st.byID[s.ID] = s
	st.list = append(st.list, s)
}

func (st *SessionStore) Remove(id uint64) *Session {
	s := st.byID[id]
	if s == nil {
		return nil
	}
	delete(st.byID, id)
	for i, q := range st.list {
		if q.ID == id {
			st.list = append(st.list[:i], st.list[i+1:]...)
			break
		}
	}
	return s
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.byID[id]
}

// All returns the live sessions in adoption order. Callers must not
// mutate the slice.
func (st *SessionStore) All() []*Session {
	return st.list
}

func (st *SessionStore) Len() int {
	return len(st.list)
}
