package nutrition

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// profileHistoryLimit caps the tracking history returned with a profile.
const profileHistoryLimit = 30

type UserProfileInput struct {
	HeightCm      float64       `json:"height_cm" validate:"required,gte=50,lte=300"`
	Age           int           `json:"age" validate:"required,gte=1,lte=150"`
	Gender        Gender        `json:"gender" validate:"required,oneof=male female"`
	ActivityLevel ActivityLevel `json:"activity_level" validate:"required"`
}

type UserProfilePatch struct {
	HeightCm      *float64       `json:"height_cm" validate:"omitempty,gte=50,lte=300"`
	Age           *int           `json:"age" validate:"omitempty,gte=1,lte=150"`
	Gender        *Gender        `json:"gender" validate:"omitempty,oneof=male female"`
	ActivityLevel *ActivityLevel `json:"activity_level"`
}

type TrackingInput struct {
	WeightKg          *float64 `json:"weight_kg" validate:"omitempty,gte=20,lte=500"`
	MuscleMassKg      *float64 `json:"muscle_mass_kg" validate:"omitempty,gte=0,lte=200"`
	BodyFatPercentage *float64 `json:"body_fat_percentage" validate:"omitempty,gte=0,lte=100"`
	RecordedDate      *Date    `json:"recorded_date"`
}

// ExtendedProfile is the profile joined with its tracking data. Current BMR,
// TDEE and macro targets are derived from the latest weight and the profile
// as it stands now.
type ExtendedProfile struct {
	UserProfile
	LatestTracking     *ProfileTracking  `json:"latest_tracking"`
	History            []ProfileTracking `json:"history"`
	HistoryUnavailable bool              `json:"history_unavailable,omitempty"`
	CurrentBMR         *int              `json:"current_bmr,omitempty"`
	CurrentTDEE        *int              `json:"current_tdee,omitempty"`
	MacroTargets       *MacroTargets     `json:"macro_targets,omitempty"`
}

type ProfileService struct {
	store Store
	now   Clock
	log   *zap.Logger
}

func NewProfileService(store Store, now Clock, log *zap.Logger) *ProfileService {
	return &ProfileService{store: store, now: now, log: log}
}

func (s *ProfileService) CreateProfile(ctx context.Context, userID string, in UserProfileInput) (UserProfile, error) {
	level, err := normalizeActivity(in.ActivityLevel)
	if err != nil {
		return UserProfile{}, err
	}
	in.ActivityLevel = level
	if err := validateStruct(in); err != nil {
		return UserProfile{}, err
	}
	now := s.now()
	p, err := s.store.Profiles().InsertProfile(ctx, UserProfile{
		UserID:        userID,
		HeightCm:      in.HeightCm,
		Age:           in.Age,
		Gender:        in.Gender,
		ActivityLevel: in.ActivityLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if errors.Is(err, ErrConflict) {
		return UserProfile{}, conflict("profile already exists")
	}
	return p, err
}

// GetProfile returns the extended view. A failing history query does not
// fail the read: the profile comes back with an empty history and
// HistoryUnavailable set.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (ExtendedProfile, error) {
	profiles := s.store.Profiles()
	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil {
		return ExtendedProfile{}, err
	}
	out := ExtendedProfile{UserProfile: profile, History: []ProfileTracking{}}

	latest, err := profiles.LatestWeightTracking(ctx, userID)
	switch {
	case err == nil:
		out.LatestTracking = &latest
		bmr := CalculateBMR(*latest.WeightKg, profile.HeightCm, profile.Age, profile.Gender)
		tdee := CalculateTDEE(bmr, profile.ActivityLevel)
		macros := CalculateMacroTargets(tdee, *latest.WeightKg, profile.Gender)
		out.CurrentBMR, out.CurrentTDEE, out.MacroTargets = &bmr, &tdee, &macros
	case errors.Is(err, ErrNotFound):
	default:
		return ExtendedProfile{}, err
	}

	history, err := profiles.ListTracking(ctx, userID, TrackingFilter{Limit: profileHistoryLimit})
	if err != nil {
		s.log.Warn("profile history unavailable", zap.String("user_id", userID), zap.Error(err))
		out.HistoryUnavailable = true
		return out, nil
	}
	if history != nil {
		out.History = history
	}
	return out, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, p UserProfilePatch) (UserProfile, error) {
	if p.ActivityLevel != nil {
		level, err := normalizeActivity(*p.ActivityLevel)
		if err != nil {
			return UserProfile{}, err
		}
		p.ActivityLevel = &level
	}
	if err := validateStruct(p); err != nil {
		return UserProfile{}, err
	}
	if p.HeightCm == nil && p.Age == nil && p.Gender == nil && p.ActivityLevel == nil {
		return UserProfile{}, invalid("body", "required", "must contain at least one field to update")
	}
	return s.store.Profiles().UpdateProfile(ctx, userID, p, s.now())
}

// CreateTracking records a measurement. When a weight is given and the user
// has a profile, BMR and TDEE are computed from that profile and stored with
// the row; without a profile they stay null.
func (s *ProfileService) CreateTracking(ctx context.Context, userID string, in TrackingInput) (ProfileTracking, error) {
	if err := validateStruct(in); err != nil {
		return ProfileTracking{}, err
	}
	if in.WeightKg == nil && in.MuscleMassKg == nil && in.BodyFatPercentage == nil {
		return ProfileTracking{}, invalid("weight_kg", "required_without_all",
			"at least one of weight_kg, muscle_mass_kg, body_fat_percentage is required")
	}

	now := s.now()
	row := ProfileTracking{
		ID:                uuid.NewString(),
		UserID:            userID,
		WeightKg:          in.WeightKg,
		MuscleMassKg:      in.MuscleMassKg,
		BodyFatPercentage: in.BodyFatPercentage,
		RecordedDate:      DateOf(now),
		CreatedAt:         now,
	}
	if in.RecordedDate != nil && !in.RecordedDate.IsZero() {
		row.RecordedDate = *in.RecordedDate
	}

	var out ProfileTracking
	err := s.store.WithinTx(ctx, func(tx Repositories) error {
		if row.WeightKg != nil {
			profile, err := tx.Profiles().GetProfile(ctx, userID)
			switch {
			case err == nil:
				bmr := CalculateBMR(*row.WeightKg, profile.HeightCm, profile.Age, profile.Gender)
				tdee := CalculateTDEE(bmr, profile.ActivityLevel)
				row.BMRCalories, row.TDEECalories = &bmr, &tdee
			case errors.Is(err, ErrNotFound):
			default:
				return err
			}
		}
		created, err := tx.Profiles().InsertTracking(ctx, row)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return ProfileTracking{}, err
	}
	return out, nil
}

func (s *ProfileService) ListTracking(ctx context.Context, userID string, f TrackingFilter) ([]ProfileTracking, error) {
	if err := checkPage(&f.Limit, f.Offset); err != nil {
		return nil, err
	}
	if err := checkRange(f.From, f.To); err != nil {
		return nil, err
	}
	return s.store.Profiles().ListTracking(ctx, userID, f)
}

func (s *ProfileService) DeleteTracking(ctx context.Context, userID, id string) (bool, error) {
	return s.store.Profiles().DeleteTracking(ctx, id, userID)
}

func normalizeActivity(level ActivityLevel) (ActivityLevel, error) {
	if level == "" {
		return "", nil
	}
	canonical, ok := ParseActivityLevel(string(level))
	if !ok {
		return "", invalid("activity_level", "oneof",
			"must be one of: sedentary, light, moderate, active, very_active")
	}
	return canonical, nil
}
