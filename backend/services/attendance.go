package services

import (
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"

	"gorm.io/gorm"

	"skillhub/backend/models"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrNotRegistered   = errors.New("not registered for this event")
	ErrNoCodeIssued    = errors.New("no attendance code issued")
	ErrCodeExpired     = errors.New("attendance code has expired")
	ErrCodeNotFound    = errors.New("invalid attendance code")
	ErrAlreadyVerified = errors.New("attendance already verified")
	ErrNotOrganizer    = errors.New("only the organizer can view attendance stats")
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeTTL      = 2 * time.Hour
)

// AttendanceService issues and validates the short-lived attendance
// codes participants present at check-in.
type AttendanceService struct {
	DB *gorm.DB
}

func NewAttendanceService(db *gorm.DB) *AttendanceService {
	return &AttendanceService{DB: db}
}

// generateCode draws codeLength symbols uniformly from codeAlphabet
// using a cryptographically secure source, so codes cannot be
// predicted or replayed by guessing. No collision check is performed
// against other active codes; the keyspace (36^6) and the short TTL
// make collisions an accepted risk, and the unique index on the
// column turns one into a store error rather than a silent reuse.
func generateCode() (string, error) {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

type IssuedCode struct {
	Code      string
	ExpiresAt time.Time
	Attended  bool
}

// GenerateCode issues a fresh code for a registered participant.
// Regenerating simply overwrites the previous value, which makes the
// old code unfindable; attended state is reset alongside.
func (as *AttendanceService) GenerateCode(eventID, userID uint) (*IssuedCode, error) {
	var participant models.Participant
	err := as.DB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(codeTTL)

	participant.AttendanceCode = &code
	participant.CodeGeneratedAt = &now
	participant.CodeExpiresAt = &expiresAt
	participant.Attended = false
	participant.AttendanceVerifiedAt = nil

	if err := as.DB.Save(&participant).Error; err != nil {
		return nil, err
	}

	return &IssuedCode{Code: code, ExpiresAt: expiresAt}, nil
}

// GetMyCode returns the caller's current code without mutating
// anything.
func (as *AttendanceService) GetMyCode(eventID, userID uint) (*IssuedCode, error) {
	var participant models.Participant
	err := as.DB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}

	if participant.AttendanceCode == nil {
		return nil, ErrNoCodeIssued
	}
	if participant.CodeExpiresAt != nil && time.Now().After(*participant.CodeExpiresAt) {
		return nil, ErrCodeExpired
	}

	return &IssuedCode{
		Code:      *participant.AttendanceCode,
		ExpiresAt: *participant.CodeExpiresAt,
		Attended:  participant.Attended,
	}, nil
}

type VerifiedAttendance struct {
	UserID     uint
	Name       string
	VerifiedAt time.Time
}

// ValidateCode checks a submitted code against the event's
// participants and marks the matching participant present. A second
// submission of the same code is an error, not a no-op: the check-in
// gate admits each participant exactly once. Expired codes are not
// purged beforehand; expiry is checked here, when the code is
// presented.
func (as *AttendanceService) ValidateCode(eventID uint, code string) (*VerifiedAttendance, error) {
	var participant models.Participant
	err := as.DB.Where("event_id = ? AND attendance_code = ?", eventID, code).First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if participant.CodeExpiresAt != nil && now.After(*participant.CodeExpiresAt) {
		return nil, ErrCodeExpired
	}
	if participant.Attended {
		return nil, ErrAlreadyVerified
	}

	participant.Attended = true
	participant.AttendanceVerifiedAt = &now
	if err := as.DB.Save(&participant).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := as.DB.First(&user, participant.UserID).Error; err != nil {
		return nil, err
	}

	return &VerifiedAttendance{
		UserID:     user.ID,
		Name:       user.Name,
		VerifiedAt: now,
	}, nil
}

type ParticipantAttendance struct {
	UserID     uint       `json:"user_id"`
	Attended   bool       `json:"attended"`
	VerifiedAt *time.Time `json:"verified_at"`
}

type AttendanceStats struct {
	Total         int                     `json:"total"`
	AttendedCount int                     `json:"attended_count"`
	Rate          float64                 `json:"rate"`
	Participants  []ParticipantAttendance `json:"participants"`
}

// Stats computes attendance counts for the organizer. Rate is 0 for
// an event with no participants.
func (as *AttendanceService) Stats(eventID, requesterID uint) (*AttendanceStats, error) {
	var event models.Event
	err := as.DB.First(&event, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	if event.OrganizerID != requesterID {
		return nil, ErrNotOrganizer
	}

	var participants []models.Participant
	if err := as.DB.Where("event_id = ?", eventID).Find(&participants).Error; err != nil {
		return nil, err
	}

	stats := AttendanceStats{
		Total:        len(participants),
		Participants: make([]ParticipantAttendance, 0, len(participants)),
	}
	for _, p := range participants {
		if p.Attended {
			stats.AttendedCount++
		}
		stats.Participants = append(stats.Participants, ParticipantAttendance{
			UserID:     p.UserID,
			Attended:   p.Attended,
			VerifiedAt: p.AttendanceVerifiedAt,
		})
	}

	if stats.Total > 0 {
		rate := float64(stats.AttendedCount) / float64(stats.Total) * 100
		stats.Rate = math.Round(rate*100) / 100
	}

	return &stats, nil
}
