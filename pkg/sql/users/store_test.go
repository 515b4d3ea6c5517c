// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package users_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/keys"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvmem"
	"github.com/cockroachdb/usercatalog/pkg/kv/kvtestutils"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgcode"
	"github.com/cockroachdb/usercatalog/pkg/sql/pgwire/pgerror"
	"github.com/cockroachdb/usercatalog/pkg/sql/users"
	"github.com/cockroachdb/usercatalog/pkg/testutils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testHasher = password.Hasher{Method: password.HashBCrypt, BcryptCost: bcrypt.MinCost}

func user(s string) username.SQLUsername {
	return username.MakeSQLUsernameFromPreNormalizedString(s)
}

func openStore(t *testing.T, db kv.DB) *users.Store {
	ctx := context.Background()
	cred, err := testHasher.Hash(ctx, "rootpw")
	require.NoError(t, err)
	_, err = users.Bootstrap(ctx, db, users.BootstrapOptions{Credential: cred})
	require.NoError(t, err)
	s, err := users.Open(ctx, db)
	require.NoError(t, err)
	return s
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	db := kvmem.New()

	_, err := users.Open(ctx, db)
	require.True(t, errors.Is(err, users.ErrNotBootstrapped), "%+v", err)

	cred, err := testHasher.Hash(ctx, "first")
	require.NoError(t, err)
	id1, err := users.Bootstrap(ctx, db, users.BootstrapOptions{Credential: cred})
	require.NoError(t, err)
	require.Equal(t, username.RootUserName(), id1.SuperUser)

	// Bootstrapping again keeps the identity and the original credential.
	cred2, err := testHasher.Hash(ctx, "second")
	require.NoError(t, err)
	id2, err := users.Bootstrap(ctx, db, users.BootstrapOptions{Credential: cred2})
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	s, err := users.Open(ctx, db)
	require.NoError(t, err)
	require.Equal(t, id1, s.Identity())
	require.Equal(t, username.RootUserName(), s.SuperUser())

	root, err := s.Get(ctx, username.RootUserName())
	require.NoError(t, err)
	require.True(t, root.IsAdmin)
	require.True(t, root.IsProtected)
	ok, err := s.Authenticate(ctx, username.RootUserName(), "first")
	require.NoError(t, err)
	require.True(t, ok)

	// A different superuser cannot take over a bootstrapped cluster.
	_, err = users.Bootstrap(ctx, db, users.BootstrapOptions{SuperUser: user("admin")})
	require.True(t, testutils.IsError(err, "already bootstrapped with superuser"), "%+v", err)
}

func TestBootstrapRejectsUnprotectedExistingUser(t *testing.T) {
	ctx := context.Background()
	db := kvmem.New()
	rec := users.UserRecord{Name: user("root")}
	require.NoError(t, db.Put(ctx, keys.UserKey(user("root")), rec.Encode()))
	_, err := users.Bootstrap(ctx, db, users.BootstrapOptions{})
	require.True(t, errors.IsAssertionFailure(err), "%+v", err)
}

func TestCreateGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())

	cred, err := testHasher.Hash(ctx, "123456")
	require.NoError(t, err)
	created, err := s.Create(ctx, users.UserRecord{Name: user("user001"), Credential: cred, IsProtected: true})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.IsProtected)

	got, err := s.Get(ctx, user("user001"))
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.False(t, got.IsAdmin)
	require.False(t, got.IsProtected)

	_, err = s.Create(ctx, users.UserRecord{Name: user("user001")})
	require.True(t, errors.Is(err, users.ErrUserAlreadyExists), "%+v", err)
	require.Equal(t, pgcode.DuplicateObject, pgerror.GetPGCode(err))
	// The failed create left the record alone.
	got, err = s.Get(ctx, user("user001"))
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = s.Create(ctx, users.UserRecord{Name: username.RootUserName()})
	require.True(t, errors.Is(err, users.ErrUserAlreadyExists), "%+v", err)

	// Names are case sensitive.
	_, err = s.Get(ctx, user("USER001"))
	require.True(t, errors.Is(err, users.ErrUserNotFound), "%+v", err)
	require.Equal(t, pgcode.UndefinedObject, pgerror.GetPGCode(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())
	_, err := s.Create(ctx, users.UserRecord{Name: user("alice")})
	require.NoError(t, err)

	rec, err := s.Update(ctx, user("alice"), func(r *users.UserRecord) error {
		r.IsAdmin = true
		r.Comment = "ops"
		return nil
	})
	require.NoError(t, err)
	require.True(t, rec.IsAdmin)
	got, err := s.Get(ctx, user("alice"))
	require.NoError(t, err)
	require.True(t, got.IsAdmin)
	require.Equal(t, "ops", got.Comment)

	boom := errors.New("boom")
	_, err = s.Update(ctx, user("alice"), func(r *users.UserRecord) error {
		r.IsAdmin = false
		return boom
	})
	require.ErrorIs(t, err, boom)
	got, err = s.Get(ctx, user("alice"))
	require.NoError(t, err)
	require.True(t, got.IsAdmin)

	_, err = s.Update(ctx, user("alice"), func(r *users.UserRecord) error {
		r.IsProtected = true
		return nil
	})
	require.True(t, errors.IsAssertionFailure(err), "%+v", err)

	_, err = s.Update(ctx, user("nobody"), func(*users.UserRecord) error { return nil })
	require.True(t, errors.Is(err, users.ErrUserNotFound), "%+v", err)
}

func TestUpdateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	f := kvtestutils.NewFaultyDB(kvmem.New())
	s := openStore(t, f)
	_, err := s.Create(ctx, users.UserRecord{Name: user("alice")})
	require.NoError(t, err)

	// A concurrent writer grants admin between our read and our write.
	var once sync.Once
	f.SetBeforeWrite(func(ctx context.Context, key []byte) error {
		var err error
		once.Do(func() {
			cur, gerr := f.Wrapped().Get(ctx, key)
			if gerr != nil {
				err = gerr
				return
			}
			rec, derr := users.DecodeUserRecord(cur)
			if derr != nil {
				err = derr
				return
			}
			rec.IsAdmin = true
			err = f.Wrapped().Put(ctx, key, rec.Encode())
		})
		return err
	})

	calls := 0
	rec, err := s.Update(ctx, user("alice"), func(r *users.UserRecord) error {
		calls++
		r.Comment = "updated"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.True(t, rec.IsAdmin)
	require.Equal(t, "updated", rec.Comment)
}

func TestConcurrentUpdatesLoseNothing(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())
	_, err := s.Create(ctx, users.UserRecord{Name: user("alice")})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Update(ctx, user("alice"), func(r *users.UserRecord) error {
				r.Comment += fmt.Sprintf("[%d]", i)
				return nil
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	got, err := s.Get(ctx, user("alice"))
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.Contains(t, got.Comment, fmt.Sprintf("[%d]", i))
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())
	_, err := s.Create(ctx, users.UserRecord{Name: user("alice")})
	require.NoError(t, err)

	veto := errors.New("veto")
	err = s.Delete(ctx, user("alice"), func(users.UserRecord) error { return veto })
	require.ErrorIs(t, err, veto)
	_, err = s.Get(ctx, user("alice"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, user("alice"), nil))
	_, err = s.Get(ctx, user("alice"))
	require.True(t, errors.Is(err, users.ErrUserNotFound), "%+v", err)

	err = s.Delete(ctx, user("alice"), nil)
	require.True(t, errors.Is(err, users.ErrUserNotFound), "%+v", err)

	var g users.Guard
	err = s.Delete(ctx, username.RootUserName(), g.CheckDrop)
	require.True(t, errors.Is(err, users.ErrForbiddenPrivilegeChange), "%+v", err)
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	f := kvtestutils.NewFaultyDB(kvmem.New())
	s := openStore(t, f)
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, users.UserRecord{Name: user(n)})
		require.NoError(t, err)
	}

	// A write failure on the second name keeps the first one.
	f.SetBeforeWrite(func(_ context.Context, key []byte) error {
		if string(key) == string(keys.UserKey(user("b"))) {
			return kv.NewUnavailableErrorf("injected: no quorum")
		}
		return nil
	})
	_, err := s.DeleteMany(ctx, []username.SQLUsername{user("a"), user("b")}, false, nil)
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.Equal(t, pgcode.CannotConnectNow, pgerror.GetPGCode(err))
	require.Equal(t, []string{"a", "b", "c", "root"}, listNames(t, s))

	// A concurrent update of one record makes the batch re-read everything.
	raced := false
	f.SetBeforeWrite(func(ctx context.Context, key []byte) error {
		if !raced && string(key) == string(keys.UserKey(user("a"))) {
			raced = true
			_, err := s.Update(ctx, user("a"), func(r *users.UserRecord) error {
				r.Comment = "changed"
				return nil
			})
			return err
		}
		return nil
	})
	n, err := s.DeleteMany(ctx, []username.SQLUsername{user("a"), user("b"), user("a")}, false, nil)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, raced)
	require.Equal(t, []string{"c", "root"}, listNames(t, s))
	f.SetBeforeWrite(nil)

	// Missing names fail the call unless missingOK is set.
	_, err = s.DeleteMany(ctx, []username.SQLUsername{user("c"), user("missing")}, false, nil)
	require.True(t, errors.Is(err, users.ErrUserNotFound), "%+v", err)
	require.Equal(t, []string{"c", "root"}, listNames(t, s))
	n, err = s.DeleteMany(ctx, []username.SQLUsername{user("c"), user("missing")}, true, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// The guard vetoes the whole deletion.
	_, err = s.Create(ctx, users.UserRecord{Name: user("d")})
	require.NoError(t, err)
	var g users.Guard
	_, err = s.DeleteMany(ctx, []username.SQLUsername{user("d"), username.RootUserName()}, false, g.CheckDrop)
	require.True(t, errors.Is(err, users.ErrForbiddenPrivilegeChange), "%+v", err)
	require.Equal(t, []string{"d", "root"}, listNames(t, s))
}

func listNames(t *testing.T, s *users.Store) []string {
	ctx := context.Background()
	it, err := s.List(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()
	var names []string
	var ok bool
	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
		names = append(names, it.Cur().Name.Normalized())
	}
	require.NoError(t, err)
	return names
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())
	for _, n := range []string{"carol", "alice", "bob"} {
		_, err := s.Create(ctx, users.UserRecord{Name: user(n)})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"alice", "bob", "carol", "root"}, listNames(t, s))

	// The iterator reads the snapshot taken by List.
	it, err := s.List(ctx)
	require.NoError(t, err)
	defer func() { require.NoError(t, it.Close()) }()
	require.NoError(t, s.Delete(ctx, user("bob"), nil))
	var names []string
	var ok bool
	for ok, err = it.Next(ctx); ok; ok, err = it.Next(ctx) {
		names = append(names, it.Cur().Name.Normalized())
	}
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob", "carol", "root"}, names)
	require.Equal(t, []string{"alice", "carol", "root"}, listNames(t, s))
}

func TestUnavailableIsNotRetried(t *testing.T) {
	ctx := context.Background()
	f := kvtestutils.NewFaultyDB(kvmem.New())
	s := openStore(t, f)
	writes := f.Writes()

	f.SetUnavailable(true)
	_, err := s.Create(ctx, users.UserRecord{Name: user("alice")})
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.Equal(t, pgcode.CannotConnectNow, pgerror.GetPGCode(err))
	_, err = s.Get(ctx, user("root"))
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	_, err = s.List(ctx)
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.Equal(t, writes, f.Writes())

	// Reads succeed but the write is rejected.
	f.SetUnavailable(false)
	f.SetBeforeWrite(func(context.Context, []byte) error {
		return kv.NewUnavailableErrorf("injected: leader lost")
	})
	calls := 0
	_, err = s.Update(ctx, user("root"), func(r *users.UserRecord) error {
		calls++
		r.Comment = "x"
		return nil
	})
	require.True(t, kv.IsUnavailable(err), "%+v", err)
	require.Equal(t, 1, calls)
}

func TestTimedOutWriteIsAmbiguous(t *testing.T) {
	ctx := context.Background()
	f := kvtestutils.NewFaultyDB(kvmem.New())
	s := openStore(t, f)
	f.SetBeforeWrite(func(ctx context.Context, _ []byte) error {
		<-ctx.Done()
		return ctx.Err()
	})
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err := s.Create(tctx, users.UserRecord{Name: user("alice")})
	require.True(t, kv.IsAmbiguousResult(err), "%+v", err)
	require.Equal(t, pgcode.StatementCompletionUnknown, pgerror.GetPGCode(err))
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, kvmem.New())
	cred, err := testHasher.Hash(ctx, "s3cret")
	require.NoError(t, err)
	_, err = s.Create(ctx, users.UserRecord{Name: user("alice"), Credential: cred})
	require.NoError(t, err)
	_, err = s.Create(ctx, users.UserRecord{Name: user("nopw")})
	require.NoError(t, err)

	for _, tc := range []struct {
		user, pw string
		ok       bool
	}{
		{"alice", "s3cret", true},
		{"alice", "S3CRET", false},
		{"nopw", "anything", false},
		{"ghost", "s3cret", false},
		{"root", "rootpw", true},
	} {
		t.Run(strings.Join([]string{tc.user, tc.pw}, "/"), func(t *testing.T) {
			ok, err := s.Authenticate(ctx, user(tc.user), tc.pw)
			require.NoError(t, err)
			require.Equal(t, tc.ok, ok)
		})
	}
}
