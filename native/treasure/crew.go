package treasure

import "treasurechain/native/common"

// UpsertCrew creates or replaces the caller's crew profile.
func (e *Engine) UpsertCrew(auth common.Authority, user [20]byte, imageHash, quote string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := auth.Require(user); err != nil {
		return err
	}
	hash, err := normalizeText("image hash", imageHash, MaxCrewFieldLength)
	if err != nil {
		return err
	}
	text, err := normalizeText("quote", quote, MaxCrewFieldLength)
	if err != nil {
		return err
	}
	crew := &Crew{User: user, ImageHash: hash, Quote: text, UpdatedAt: e.now()}
	if err := e.state.CrewPut(crew); err != nil {
		return err
	}
	e.emit(CrewEvent(EventTypeCrewUpdated, user))
	return nil
}

// EraseCrew removes the caller's crew profile.
func (e *Engine) EraseCrew(auth common.Authority, user [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := auth.Require(user); err != nil {
		return err
	}
	_, ok, err := e.state.CrewGet(user)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCrewNotFound
	}
	if err := e.state.CrewDelete(user); err != nil {
		return err
	}
	e.emit(CrewEvent(EventTypeCrewErased, user))
	return nil
}

// Crew returns the profile of user.
func (e *Engine) Crew(user [20]byte) (*Crew, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	crew, ok, err := e.state.CrewGet(user)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCrewNotFound
	}
	return crew, nil
}
