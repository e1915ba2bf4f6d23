package testing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/desertthunder/reelx/internal/models"
)

// FakeAccount is an in-memory stand-in for the account API used by the session and favourites stores.
//
// Gates, when set, block the matching calls until a value is received or the context ends. Entered
// receives the call name (without arguments) as each gated call starts, if non-nil.
type FakeAccount struct {
	mu sync.Mutex

	LoginResult *models.LoginResult
	LoginErr    error
	LogoutErr   error

	List          []models.Movie
	FavouritesErr error
	AddErr        error
	RemoveErr     error

	FavouritesGate chan struct{}
	MutationGate   chan struct{}
	Entered        chan string

	calls []string
}

func (f *FakeAccount) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

// Calls returns the calls made so far, e.g. "login:ana", "favourites", "add:42".
func (f *FakeAccount) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount counts calls equal to name.
func (f *FakeAccount) CallCount(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *FakeAccount) wait(ctx context.Context, s fakeState, gate chan struct{}, name string) error {
	if gate == nil {
		return nil
	}
	if s.entered != nil {
		s.entered <- name
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Set replaces a field under the fake's lock.
func (f *FakeAccount) Set(fn func(f *FakeAccount)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

type fakeState struct {
	loginResult    *models.LoginResult
	loginErr       error
	logoutErr      error
	list           []models.Movie
	favouritesErr  error
	addErr         error
	removeErr      error
	favouritesGate chan struct{}
	mutationGate   chan struct{}
	entered        chan string
}

func (f *FakeAccount) snapshot() fakeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeState{
		loginResult:    f.LoginResult,
		loginErr:       f.LoginErr,
		logoutErr:      f.LogoutErr,
		list:           slices.Clone(f.List),
		favouritesErr:  f.FavouritesErr,
		addErr:         f.AddErr,
		removeErr:      f.RemoveErr,
		favouritesGate: f.FavouritesGate,
		mutationGate:   f.MutationGate,
		entered:        f.Entered,
	}
}

func (f *FakeAccount) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	f.record("login:" + username)
	s := f.snapshot()
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	if s.loginResult == nil {
		return nil, errors.New("no login result configured")
	}
	return s.loginResult, nil
}

func (f *FakeAccount) Logout(ctx context.Context, token string) error {
	f.record("logout:" + token)
	return f.snapshot().logoutErr
}

func (f *FakeAccount) Favourites(ctx context.Context) ([]models.Movie, error) {
	f.record("favourites")
	s := f.snapshot()
	if err := f.wait(ctx, s, s.favouritesGate, "favourites"); err != nil {
		return nil, err
	}
	s = f.snapshot()
	if s.favouritesErr != nil {
		return nil, s.favouritesErr
	}
	return s.list, nil
}

func (f *FakeAccount) AddFavourite(ctx context.Context, id models.ID) error {
	f.record(fmt.Sprintf("add:%s", id))
	s := f.snapshot()
	if err := f.wait(ctx, s, s.mutationGate, "add"); err != nil {
		return err
	}
	return f.snapshot().addErr
}

func (f *FakeAccount) RemoveFavourite(ctx context.Context, id models.ID) error {
	f.record(fmt.Sprintf("remove:%s", id))
	s := f.snapshot()
	if err := f.wait(ctx, s, s.mutationGate, "remove"); err != nil {
		return err
	}
	return f.snapshot().removeErr
}

// FStorage fails every operation.
type FStorage struct{}

func (FStorage) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("storage read failed")
}

func (FStorage) Set(ctx context.Context, key, value string) error {
	return errors.New("storage write failed")
}

func (FStorage) Delete(ctx context.Context, keys ...string) error {
	return errors.New("storage delete failed")
}
