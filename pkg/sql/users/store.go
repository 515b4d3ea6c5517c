// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package users implements the user catalog: the persisted set of security
// principals, the store operations over the replicated metadata keyspace,
// and the guard that protects the bootstrap superuser.
//
// The keyspace is the sole authority. The store keeps no copy of any
// mutable record between calls; every read goes to the keyspace and every
// write is a conditional put against the value read.
package users

import (
	"bytes"
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/usercatalog/pkg/keys"
	"github.com/cockroachdb/usercatalog/pkg/kv"
	"github.com/cockroachdb/usercatalog/pkg/security/password"
	"github.com/cockroachdb/usercatalog/pkg/security/username"
	"github.com/cockroachdb/usercatalog/pkg/util/log"
	"github.com/google/uuid"
)

// Store provides the user record operations.
type Store struct {
	db       kv.DB
	identity ClusterIdentity
	newID    func() uuid.UUID
}

// BootstrapOptions configures Bootstrap.
type BootstrapOptions struct {
	// SuperUser is the name of the protected superuser. Defaults to root.
	SuperUser username.SQLUsername
	// Credential is the superuser's initial credential. It may be empty, in
	// which case the superuser cannot log in with a password until one is
	// set.
	Credential password.Credential
}

// Bootstrap initializes an empty keyspace with the cluster identity and
// the protected superuser record. It is idempotent: calling it again on a
// bootstrapped keyspace with the same superuser leaves the existing
// records, including the superuser's credential, untouched.
func Bootstrap(ctx context.Context, db kv.DB, opts BootstrapOptions) (ClusterIdentity, error) {
	su := opts.SuperUser
	if su.Undefined() {
		su = username.RootUserName()
	}
	if err := su.ValidateForCreation(); err != nil {
		return ClusterIdentity{}, err
	}

	raw, err := db.Get(ctx, keys.ClusterIdentityKey)
	if err != nil {
		return ClusterIdentity{}, wrapKVError(err, false /* write */, "reading cluster identity", username.SQLUsername{})
	}
	if raw != nil {
		return checkExistingIdentity(ctx, raw, su)
	}

	// The superuser record goes first: a keyspace with an identity always
	// has its superuser.
	rec := UserRecord{
		Name:        su,
		ID:          uuid.New(),
		Credential:  opts.Credential,
		IsAdmin:     true,
		IsProtected: true,
	}
	err = db.CPut(ctx, keys.UserKey(su), rec.Encode(), nil /* expValue */)
	var cfe *kv.ConditionFailedError
	if errors.As(err, &cfe) {
		existing, derr := DecodeUserRecord(cfe.ActualValue)
		if derr != nil {
			return ClusterIdentity{}, errors.Wrapf(derr, "reading existing superuser %s", su)
		}
		if !existing.IsProtected || !existing.IsAdmin {
			return ClusterIdentity{}, errors.AssertionFailedf(
				"existing user %s is not a protected administrator", su)
		}
	} else if err != nil {
		return ClusterIdentity{}, wrapKVError(err, true /* write */, "bootstrapping superuser", su)
	}

	identity := ClusterIdentity{ClusterID: uuid.New(), SuperUser: su}
	err = db.CPut(ctx, keys.ClusterIdentityKey, identity.Encode(), nil /* expValue */)
	if errors.As(err, &cfe) {
		return checkExistingIdentity(ctx, cfe.ActualValue, su)
	} else if err != nil {
		return ClusterIdentity{}, wrapKVError(err, true /* write */, "bootstrapping cluster identity for", su)
	}
	log.Infof(ctx, "bootstrapped cluster %s with superuser %s", identity.ClusterID, su)
	return identity, nil
}

func checkExistingIdentity(
	ctx context.Context, raw []byte, su username.SQLUsername,
) (ClusterIdentity, error) {
	existing, err := DecodeClusterIdentity(raw)
	if err != nil {
		return ClusterIdentity{}, err
	}
	if existing.SuperUser != su {
		return ClusterIdentity{}, errors.Newf(
			"cluster %s is already bootstrapped with superuser %s",
			existing.ClusterID, existing.SuperUser)
	}
	log.VEventf(ctx, 1, "cluster %s already bootstrapped", existing.ClusterID)
	return existing, nil
}

// Open returns a store over a bootstrapped keyspace. The cluster identity,
// and with it the protected superuser, is resolved once here.
func Open(ctx context.Context, db kv.DB) (*Store, error) {
	raw, err := db.Get(ctx, keys.ClusterIdentityKey)
	if err != nil {
		return nil, wrapKVError(err, false /* write */, "reading cluster identity", username.SQLUsername{})
	}
	if raw == nil {
		return nil, errors.WithHint(ErrNotBootstrapped,
			"Start a meta node once to bootstrap the cluster.")
	}
	identity, err := DecodeClusterIdentity(raw)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, identity: identity, newID: uuid.New}, nil
}

// Identity returns the cluster identity resolved by Open.
func (s *Store) Identity() ClusterIdentity {
	return s.identity
}

// SuperUser returns the name of the protected superuser.
func (s *Store) SuperUser() username.SQLUsername {
	return s.identity.SuperUser
}

// Create persists a new record if no record with the same name exists.
// A zero ID is assigned. Records created this way are never protected.
func (s *Store) Create(ctx context.Context, rec UserRecord) (UserRecord, error) {
	if rec.Name.Undefined() {
		return UserRecord{}, errors.AssertionFailedf("creating a user without a name")
	}
	rec = rec.Clone()
	rec.IsProtected = false
	if rec.ID == uuid.Nil {
		rec.ID = s.newID()
	}
	err := s.db.CPut(ctx, keys.UserKey(rec.Name), rec.Encode(), nil /* expValue */)
	if errors.HasType(err, (*kv.ConditionFailedError)(nil)) {
		return UserRecord{}, NewUserAlreadyExistsError(rec.Name)
	}
	if err != nil {
		return UserRecord{}, wrapKVError(err, true /* write */, "creating user", rec.Name)
	}
	log.VEventf(ctx, 2, "created user %s", rec.Name)
	return rec, nil
}

// Get returns the current record for name. The read is linearizable.
func (s *Store) Get(ctx context.Context, name username.SQLUsername) (UserRecord, error) {
	raw, err := s.db.Get(ctx, keys.UserKey(name))
	if err != nil {
		return UserRecord{}, wrapKVError(err, false /* write */, "looking up user", name)
	}
	if raw == nil {
		return UserRecord{}, NewUserNotFoundError(name)
	}
	return s.decode(name, raw)
}

func (s *Store) decode(name username.SQLUsername, raw []byte) (UserRecord, error) {
	rec, err := DecodeUserRecord(raw)
	if err != nil {
		return UserRecord{}, errors.Wrapf(err, "user %s", name)
	}
	if rec.Name != name {
		return UserRecord{}, errors.AssertionFailedf("record for %s is stored under %s", rec.Name, name)
	}
	return rec, nil
}

// Update atomically applies mutate to the current record for name. If a
// concurrent write commits between the read and the conditional put, the
// mutator runs again against the newer record, so no update is lost. An
// error from mutate aborts the update and is returned as is. The mutator
// must not change Name, ID or IsProtected.
//
// Only conditional put conflicts are retried here. Unavailability and
// ambiguous results are returned to the caller.
func (s *Store) Update(
	ctx context.Context, name username.SQLUsername, mutate func(*UserRecord) error,
) (UserRecord, error) {
	key := keys.UserKey(name)
	raw, err := s.db.Get(ctx, key)
	if err != nil {
		return UserRecord{}, wrapKVError(err, false /* write */, "looking up user", name)
	}
	for attempt := 1; ; attempt++ {
		if raw == nil {
			return UserRecord{}, NewUserNotFoundError(name)
		}
		orig, err := s.decode(name, raw)
		if err != nil {
			return UserRecord{}, err
		}
		rec := orig.Clone()
		if err := mutate(&rec); err != nil {
			return UserRecord{}, err
		}
		if rec.Name != orig.Name || rec.ID != orig.ID || rec.IsProtected != orig.IsProtected {
			return UserRecord{}, errors.AssertionFailedf("mutation of immutable fields of user %s", name)
		}
		updated := rec.Encode()
		if bytes.Equal(updated, raw) {
			return rec, nil
		}
		err = s.db.CPut(ctx, key, updated, raw)
		var cfe *kv.ConditionFailedError
		if errors.As(err, &cfe) {
			log.VEventf(ctx, 2, "update of user %s raced with a concurrent write (attempt %d)", name, attempt)
			raw = cfe.ActualValue
			continue
		}
		if err != nil {
			return UserRecord{}, wrapKVError(err, true /* write */, "updating user", name)
		}
		log.VEventf(ctx, 2, "updated user %s", name)
		return rec, nil
	}
}

// Delete atomically removes the record for name. precondition, if not
// nil, is evaluated against the record being deleted and may veto the
// deletion.
func (s *Store) Delete(
	ctx context.Context, name username.SQLUsername, precondition func(UserRecord) error,
) error {
	_, err := s.DeleteMany(ctx, []username.SQLUsername{name}, false /* missingOK */, precondition)
	return err
}

// DeleteMany removes the records for names in one atomic write: either
// every record is deleted or none is. precondition, if not nil, is
// evaluated against every record before anything is written and may veto
// the whole deletion. With missingOK, names without a record are skipped;
// otherwise a missing name fails the call with ErrUserNotFound. It returns
// the number of records deleted.
//
// If a record changes between the read and the write, all records are
// read and checked again.
func (s *Store) DeleteMany(
	ctx context.Context,
	names []username.SQLUsername,
	missingOK bool,
	precondition func(UserRecord) error,
) (int, error) {
	uniq := make([]username.SQLUsername, 0, len(names))
	seen := make(map[username.SQLUsername]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			uniq = append(uniq, name)
		}
	}
	for attempt := 1; ; attempt++ {
		writes := make([]kv.CondWrite, 0, len(uniq))
		for _, name := range uniq {
			key := keys.UserKey(name)
			raw, err := s.db.Get(ctx, key)
			if err != nil {
				return 0, wrapKVError(err, false /* write */, "looking up user", name)
			}
			if raw == nil {
				if missingOK {
					continue
				}
				return 0, NewUserNotFoundError(name)
			}
			rec, err := s.decode(name, raw)
			if err != nil {
				return 0, err
			}
			if precondition != nil {
				if err := precondition(rec); err != nil {
					return 0, err
				}
			}
			writes = append(writes, kv.CondWrite{Key: key, Value: nil, ExpValue: raw})
		}
		if len(writes) == 0 {
			return 0, nil
		}
		err := s.db.CPutBatch(ctx, writes)
		if errors.HasType(err, (*kv.ConditionFailedError)(nil)) {
			log.VEventf(ctx, 2, "drop of %d users raced with a concurrent write (attempt %d)", len(writes), attempt)
			continue
		}
		if err != nil {
			if len(uniq) == 1 {
				return 0, wrapKVError(err, true /* write */, "dropping user", uniq[0])
			}
			return 0, wrapKVError(err, true /* write */, "dropping users", username.SQLUsername{})
		}
		log.VEventf(ctx, 2, "dropped %d users", len(writes))
		return len(writes), nil
	}
}

// Authenticate verifies a candidate password for name. It returns false
// without error for unknown users and users without a password.
func (s *Store) Authenticate(
	ctx context.Context, name username.SQLUsername, candidate string,
) (bool, error) {
	rec, err := s.Get(ctx, name)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return password.CompareHashAndPassword(ctx, rec.Credential, candidate)
}

// List returns an iterator over all records in name order, read from a
// snapshot of the keyspace taken now. The caller must Close it. Listing
// again starts a new snapshot.
func (s *Store) List(ctx context.Context) (*Iterator, error) {
	start, end := keys.UsersSpan()
	it, err := s.db.Scan(ctx, start, end)
	if err != nil {
		return nil, wrapKVError(err, false /* write */, "listing users", username.SQLUsername{})
	}
	return &Iterator{it: it}, nil
}

// Iterator iterates over user records.
type Iterator struct {
	it  kv.Iterator
	cur UserRecord
}

// Next advances the iterator. Records are decoded whole, so a record is
// either returned intact or the iterator fails.
func (it *Iterator) Next(ctx context.Context) (bool, error) {
	ok, err := it.it.Next(ctx)
	if !ok || err != nil {
		if err != nil {
			err = wrapKVError(err, false /* write */, "listing users", username.SQLUsername{})
		}
		return false, err
	}
	kvp := it.it.Cur()
	name, ok := keys.DecodeUserKey(kvp.Key)
	if !ok {
		return false, errors.AssertionFailedf("unexpected key %s in users span", keys.PrettyPrint(kvp.Key))
	}
	rec, err := DecodeUserRecord(kvp.Value)
	if err != nil {
		return false, errors.Wrapf(err, "user %s", name)
	}
	it.cur = rec
	return true, nil
}

// Cur returns the current record.
func (it *Iterator) Cur() UserRecord {
	return it.cur
}

// Close releases the iterator.
func (it *Iterator) Close() error {
	return it.it.Close()
}
