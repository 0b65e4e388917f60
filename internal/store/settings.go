package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avilaroman/cadenza/internal/constants"
	"github.com/avilaroman/cadenza/internal/domain"
)

type SettingsRepo struct {
	db *DB
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(key string) (string, error) {
	var value string
	err := r.db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

func (r *SettingsRepo) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// Preferences loads the sync preferences snapshot: directory allow/block
// lists (stored as JSON arrays) and the deep-scan flag.
func (r *SettingsRepo) Preferences() (domain.Preferences, error) {
	var prefs domain.Preferences

	blocked, err := r.stringList(constants.SettingBlockedDirs)
	if err != nil {
		return domain.Preferences{}, err
	}
	prefs.BlockedDirs = blocked

	allowed, err := r.stringList(constants.SettingAllowedDirs)
	if err != nil {
		return domain.Preferences{}, err
	}
	prefs.AllowedDirs = allowed

	deep, err := r.Get(constants.SettingDeepScan)
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("read %s: %w", constants.SettingDeepScan, err)
	}
	prefs.DeepScan = deep == "true" || deep == "1"

	return prefs, nil
}

// SetPreferences persists the full preferences snapshot.
func (r *SettingsRepo) SetPreferences(prefs domain.Preferences) error {
	if err := r.setStringList(constants.SettingBlockedDirs, prefs.BlockedDirs); err != nil {
		return err
	}
	if err := r.setStringList(constants.SettingAllowedDirs, prefs.AllowedDirs); err != nil {
		return err
	}
	deep := "false"
	if prefs.DeepScan {
		deep = "true"
	}
	return r.Set(constants.SettingDeepScan, deep)
}

func (r *SettingsRepo) stringList(key string) ([]string, error) {
	raw, err := r.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == "" {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return list, nil
}

func (r *SettingsRepo) setStringList(key string, list []string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.Set(key, string(data))
}
