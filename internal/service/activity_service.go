package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/campus-registry/internal/dto"
	"github.com/noah-isme/campus-registry/internal/models"
	"github.com/noah-isme/campus-registry/internal/observability"
	"github.com/noah-isme/campus-registry/internal/repository"
)

// Entity types written to the activity log.
const (
	EntityFaculty = "faculty"
	EntityGroup   = "group"
	EntityStudent = "student"
)

// Activity actions written to the activity log.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	Action     string
	EntityType string
	EntityID   uint
	Metadata   map[string]interface{}
}

// ActivityService exposes the audit trail of registry changes.
type ActivityService interface {
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	store  repository.Store
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(store repository.Store, logger zerolog.Logger) ActivityService {
	return &activityService{
		store:  store,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Action:     strings.ToLower(strings.TrimSpace(req.Action)),
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		EntityID:   req.EntityID,
	}

	entries, total, err := s.store.Activity().List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list activity logs")
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       max(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

// recordActivity writes an audit entry through tx so that it commits or
// rolls back together with the change it describes.
func recordActivity(ctx context.Context, tx repository.Store, entry ActivityEntry) error {
	action := strings.ToLower(strings.TrimSpace(entry.Action))
	entityType := strings.ToLower(strings.TrimSpace(entry.EntityType))
	if action == "" || entityType == "" {
		return fmt.Errorf("activity action and entity type are required")
	}

	model := models.ActivityLog{
		Action:     entityType + "." + action,
		EntityType: entityType,
		Metadata:   sanitizeMetadata(entry.Metadata),
	}
	if entry.EntityID != 0 {
		id := entry.EntityID
		model.EntityID = &id
	}

	if err := tx.Activity().Create(ctx, &model); err != nil {
		return fmt.Errorf("record %s: %w", model.Action, err)
	}
	return nil
}

// countMutation is called once the change has been committed.
func countMutation(entityType, action string) {
	observability.Mutations().WithLabelValues(entityType, action).Inc()
}

func sanitizeMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "phone") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

