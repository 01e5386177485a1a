package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"varirunBack/internal/models"
)

const runResultFolder = "run-results"

// RunResultService accepts run results and keeps rankings equal to the sum of
// approved results.
type RunResultService struct {
	Tx       Transactor
	Results  RunResultStore
	Rankings RankingStore
	Images   ImageStore
	Cache    LeaderboardCache
	Locker   Locker
	Notifier Notifier
	Log      zerolog.Logger
}

func (s *RunResultService) Submit(ctx context.Context, in models.SubmitRunResultInput) (models.RunResult, error) {
	rng, runTime, fields := parseRunValues(in.Range, in.Time)
	if len(fields) > 0 {
		return models.RunResult{}, models.InvalidInput("validation failed", fields)
	}

	rr := models.RunResult{UserID: in.UserID, Range: rng, Time: runTime}
	if in.Image != nil {
		file, err := s.Images.Upload(ctx, runResultFolder, *in.Image)
		if err != nil {
			return models.RunResult{}, models.UploadFailed(err)
		}
		rr.ImageURL = file.URL
		rr.ImageRef = file.Ref
	}

	var result models.RunResult
	err := s.Tx.Exec(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.Results.Create(ctx, rr)
		return err
	})
	if err != nil {
		if rr.ImageRef != "" {
			if derr := s.Images.Delete(context.WithoutCancel(ctx), rr.ImageRef); derr != nil {
				s.Log.Warn().Err(derr).Str("ref", rr.ImageRef).Msg("failed to delete run result image")
			}
		}
		return models.RunResult{}, err
	}

	s.Log.Info().Int64("run_result_id", result.ID).Int64("user_id", result.UserID).Float64("range", result.Range).Msg("run result submitted")
	return result, nil
}

// parseRunValues validates both fields and reports every problem at once.
func parseRunValues(rawRange, rawTime string) (float64, int64, map[string]string) {
	fields := map[string]string{}

	var rng float64
	rawRange = strings.TrimSpace(rawRange)
	if rawRange == "" {
		fields["range"] = "range is required"
	} else if v, err := strconv.ParseFloat(rawRange, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		fields["range"] = "range must be a number"
	} else if v < 0 {
		fields["range"] = "range must not be negative"
	} else {
		rng = v
	}

	var runTime int64
	rawTime = strings.TrimSpace(rawTime)
	if rawTime == "" {
		fields["time"] = "time is required"
	} else if v, ok := parseWholeNumber(rawTime); !ok {
		fields["time"] = "time must be an integer"
	} else if v < 0 {
		fields["time"] = "time must not be negative"
	} else {
		runTime = v
	}

	return rng, runTime, fields
}

// Below maxExactFloat every integer is exactly representable as a float64.
const maxExactFloat = 1 << 53

// parseWholeNumber accepts "60" and "60.0" but nothing that would lose
// precision or overflow int64.
func parseWholeNumber(raw string) (int64, bool) {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) >= maxExactFloat {
		return 0, false
	}
	return int64(f), true
}

// UpdateStatus sets any status. Entering approve adds the result to the
// user's ranking once; leaving approve takes it back out.
func (s *RunResultService) UpdateStatus(ctx context.Context, in models.UpdateRunStatusInput) (models.RunResult, error) {
	if !models.IsRunStatus(in.Status) {
		return models.RunResult{}, models.InvalidInput("invalid status", map[string]string{"status": "must be pending, approve or reject"})
	}

	unlock, err := acquire(ctx, s.Locker, lockKey("run_result", in.ResultID), "run result is being processed")
	if err != nil {
		return models.RunResult{}, err
	}
	defer unlock()

	var (
		result models.RunResult
		delta  float64
	)
	err = s.Tx.Exec(ctx, func(ctx context.Context) error {
		rr, err := s.Results.GetByID(ctx, in.ResultID)
		if err != nil {
			return notFoundAs(err, "run result")
		}

		if err := s.Results.UpdateStatus(ctx, rr.ID, rr.Status, in); err != nil {
			if errors.Is(err, models.ErrStatusChanged) {
				return models.Conflict("run result changed, retry")
			}
			return err
		}

		switch {
		case in.Status == models.RunStatusApprove && rr.Status != models.RunStatusApprove:
			delta = rr.Range
			err = s.Rankings.Increment(ctx, rr.UserID, rr.Range, rr.Time)
		case rr.Status == models.RunStatusApprove && in.Status != models.RunStatusApprove:
			delta = -rr.Range
			err = s.Rankings.Increment(ctx, rr.UserID, -rr.Range, -rr.Time)
		}
		if err != nil {
			return err
		}

		result, err = s.Results.GetByID(ctx, rr.ID)
		return err
	})
	if err != nil {
		return models.RunResult{}, err
	}

	if delta != 0 && s.Cache != nil {
		if err := s.Cache.Add(ctx, result.UserID, delta); err != nil {
			s.Log.Warn().Err(err).Int64("user_id", result.UserID).Msg("failed to update leaderboard cache")
		}
	}
	s.Log.Info().Int64("run_result_id", result.ID).Str("status", result.Status).Int64("approved_by", in.ApprovedBy).Msg("run result status updated")
	notify(s.Notifier, result.UserID, models.EventRunResultStatus, result)
	return result, nil
}

// Get returns one result. Non-admins only see their own.
func (s *RunResultService) Get(ctx context.Context, id, requesterID int64, admin bool) (models.RunResult, error) {
	rr, err := s.Results.GetByID(ctx, id)
	if err != nil {
		return models.RunResult{}, notFoundAs(err, "run result")
	}
	if !admin && rr.UserID != requesterID {
		return models.RunResult{}, models.NotFound("run result")
	}
	return rr, nil
}

func (s *RunResultService) List(ctx context.Context, f models.RunResultFilter) (models.Paged[models.RunResult], error) {
	if f.Status != "" && !models.IsRunStatus(f.Status) {
		return models.Paged[models.RunResult]{}, models.InvalidInput("invalid status", map[string]string{"status": "must be pending, approve or reject"})
	}
	items, total, err := s.Results.List(ctx, f)
	if err != nil {
		return models.Paged[models.RunResult]{}, err
	}
	return models.NewPaged(items, f.Page, total), nil
}
