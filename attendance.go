package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"invitation/constants"

	validatorv10 "github.com/go-playground/validator/v10"
)

const (
	SideGroom = "groom"
	SideBride = "bride"

	MealYes = "yes"
	MealNo  = "no"
)

// AttendanceRequest is the payload of the "attendance" action
type AttendanceRequest struct {
	Name  string  `json:"name" validate:"required"`
	Side  string  `json:"side" validate:"required,oneof=groom bride"`
	Count flexInt `json:"count" validate:"min=1"`
	Meal  string  `json:"meal" validate:"required,oneof=yes no"`
}

func sideLabel(side string) string {
	if side == SideGroom {
		return constants.SIDE_GROOM_LABEL
	}
	return constants.SIDE_BRIDE_LABEL
}

func mealLabel(meal string) string {
	if meal == MealYes {
		return constants.MEAL_PLANNED_LABEL
	}
	return constants.MEAL_UNDECIDED_LABEL
}

// AttendanceService records RSVPs. Records can only be added.
type AttendanceService struct {
	sheets   *SheetStore
	notifier Notifier
	validate *validatorv10.Validate
	now      func() time.Time
}

func NewAttendanceService(sheets *SheetStore, notifier Notifier) *AttendanceService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &AttendanceService{
		sheets:   sheets,
		notifier: notifier,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Submit validates and appends one RSVP. Side and meal are stored as the
// labels shown in the sheet.
func (s *AttendanceService) Submit(ctx context.Context, req AttendanceRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Side = strings.ToLower(strings.TrimSpace(req.Side))
	req.Meal = strings.ToLower(strings.TrimSpace(req.Meal))
	if err := validatePayload(s.validate, req); err != nil {
		return err
	}

	record := AttendanceRecord{
		Name:         req.Name,
		Side:         sideLabel(req.Side),
		Count:        int(req.Count),
		Meal:         mealLabel(req.Meal),
		RegisteredAt: s.now(),
	}

	_, err := s.sheets.AppendWithHeader(ctx, constants.ATTENDANCE_SHEET, constants.ATTENDANCE_HEADER, []string{
		record.Name,
		record.Side,
		strconv.Itoa(record.Count),
		record.Meal,
		formatStoredTime(record.RegisteredAt),
	})
	if err != nil {
		return err
	}

	s.notifier.NewAttendance(record)
	return nil
}
