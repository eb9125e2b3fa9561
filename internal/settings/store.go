package settings

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bSettings = []byte("settings") // key=nome, val=json

	ErrNotFound = errors.New("settings: not found")
)

// Setting is one named configuration value. Every write gets a fresh
// revision id so audit entries can point at the exact version they caused.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Revision  string    `json:"revision"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct{ db *bolt.DB }

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bSettings)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Put(key, value, actor string) (Setting, error) {
	set := Setting{
		Key:       key,
		Value:     value,
		Revision:  uuid.NewString(),
		UpdatedBy: actor,
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, _ := json.Marshal(set)
		return tx.Bucket(bSettings).Put([]byte(key), b)
	})
	return set, err
}

func (s *Store) Get(key string) (Setting, error) {
	var set Setting
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bSettings).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &set)
	})
	return set, err
}

func (s *Store) List() ([]Setting, error) {
	var out []Setting
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bSettings).ForEach(func(k, v []byte) error {
			var set Setting
			if json.Unmarshal(v, &set) != nil {
				return nil
			}
			out = append(out, set)
			return nil
		})
	})
	return out, err
}
