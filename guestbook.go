package main

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"invitation/constants"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GuestbookPage is one page of the guestbook, newest entries first.
type GuestbookPage struct {
	Entries     []GuestbookEntry
	Total       int
	TotalPages  int
	CurrentPage int
}

// WriteEntryRequest is the payload of the "write" action
type WriteEntryRequest struct {
	Name     string `json:"name" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Password string `json:"password"`
}

type GuestbookService struct {
	sheets   *SheetStore
	cache    *ReadCache
	notifier Notifier
	validate *validatorv10.Validate
	cfg      GuestbookConfig
	now      func() time.Time
}

func NewGuestbookService(sheets *SheetStore, cache *ReadCache, notifier Notifier, cfg GuestbookConfig) *GuestbookService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &GuestbookService{
		sheets:   sheets,
		cache:    cache,
		notifier: notifier,
		validate: newValidator(),
		cfg:      cfg,
		now:      time.Now,
	}
}

func entryFromRow(row Row) GuestbookEntry {
	return GuestbookEntry{
		ID:           row.Cell(0),
		Name:         row.Cell(1),
		Message:      row.Cell(2),
		CreatedAt:    parseStoredTime(row.Cell(3)),
		PasswordHash: row.Cell(4),
		rowID:        row.Key,
	}
}

func entriesFromRows(rows []Row) []GuestbookEntry {
	entries := make([]GuestbookEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries
}

// ReadRecent returns the newest limit entries, newest first. A non-positive
// limit falls back to the configured preview count.
func (s *GuestbookService) ReadRecent(ctx context.Context, limit int) ([]GuestbookEntry, error) {
	if limit <= 0 {
		limit = s.cfg.PreviewLimit
	}

	if cached, ok := s.cache.GetRecent(limit); ok {
		return cached, nil
	}

	rows, err := s.sheets.LastDataRows(ctx, constants.GUESTBOOK_SHEET, limit)
	if err != nil {
		return nil, err
	}

	entries := entriesFromRows(rows)
	s.cache.SetRecent(limit, entries)
	return entries, nil
}

// ReadPage returns the page-th window of pageSize entries over the guestbook
// ordered newest first. Pages past the end are empty, not an error.
func (s *GuestbookService) ReadPage(ctx context.Context, page, pageSize int) (GuestbookPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	if cached, ok := s.cache.GetPage(page, pageSize); ok {
		return cached, nil
	}

	rows, err := s.sheets.DataRows(ctx, constants.GUESTBOOK_SHEET)
	if err != nil {
		return GuestbookPage{}, err
	}
	slices.Reverse(rows)

	total := len(rows)
	result := GuestbookPage{
		Entries:     []GuestbookEntry{},
		Total:       total,
		TotalPages:  ceilDiv(total, pageSize),
		CurrentPage: page,
	}

	if page <= result.TotalPages {
		start := (page - 1) * pageSize
		end := min(start+pageSize, total)
		result.Entries = entriesFromRows(rows[start:end])
	}

	s.cache.SetPage(page, pageSize, result)
	return result, nil
}

// Write appends a new entry and returns its id. The password, when given, is
// stored only as a bcrypt hash of its digest.
func (s *GuestbookService) Write(ctx context.Context, req WriteEntryRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if err := validatePayload(s.validate, req); err != nil {
		return "", err
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword(passwordDigest(req.Password), s.cfg.PasswordCost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		passwordHash = string(hash)
	}

	entry := GuestbookEntry{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Message:      req.Message,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	}

	rowID, err := s.sheets.AppendWithHeader(ctx, constants.GUESTBOOK_SHEET, constants.GUESTBOOK_HEADER, []string{
		entry.ID,
		entry.Name,
		entry.Message,
		formatStoredTime(entry.CreatedAt),
		entry.PasswordHash,
	})
	if err != nil {
		return "", err
	}
	entry.rowID = rowID

	s.cache.Invalidate()
	s.notifier.NewEntry(entry)
	return entry.ID, nil
}

// Delete removes the entry with the given id once credential is accepted by
// the configured delete policy.
func (s *GuestbookService) Delete(ctx context.Context, id, credential string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &fieldError{msg: "id is required"}
	}

	adminPolicy := s.cfg.DeletePolicy == constants.DELETE_POLICY_ADMIN
	if adminPolicy && !s.isAdminPassword(credential) {
		return ErrUnauthorized
	}

	rows, err := s.sheets.DataRows(ctx, constants.GUESTBOOK_SHEET)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(rows, func(r Row) bool { return r.Cell(0) == id })
	if idx < 0 {
		return ErrNotFound
	}
	entry := entryFromRow(rows[idx])

	if !adminPolicy {
		if entry.PasswordHash == "" || credential == "" {
			return ErrUnauthorized
		}
		if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), passwordDigest(credential)) != nil {
			return ErrUnauthorized
		}
	}

	if err := s.sheets.DeleteRow(ctx, constants.GUESTBOOK_SHEET, entry.rowID); err != nil {
		return err
	}

	s.cache.Invalidate()
	return nil
}

// Credential picks the delete credential the active policy checks, falling
// back to the other field when that one is empty.
func (s *GuestbookService) Credential(password, adminPassword string) string {
	first, second := password, adminPassword
	if s.cfg.DeletePolicy == constants.DELETE_POLICY_ADMIN {
		first, second = adminPassword, password
	}
	if first != "" {
		return first
	}
	return second
}

// passwordDigest keeps bcrypt input at a fixed 64 bytes, below its 72 byte
// limit, whatever the password length.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

func (s *GuestbookService) isAdminPassword(credential string) bool {
	if s.cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(credential), []byte(s.cfg.AdminPassword)) == 1
}
