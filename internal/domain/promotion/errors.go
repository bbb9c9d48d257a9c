package promotion

import "photosession/internal/pkg/apperror"

var (
	ErrNotFound          = apperror.New(apperror.KindNotFound, "PROMOTION_NOT_FOUND", "promotion not found")
	ErrCodeExists        = apperror.New(apperror.KindConflict, "PROMOTION_CODE_EXISTS", "promotion code already exists")
	ErrUsageLimitReached = apperror.New(apperror.KindConflict, "PROMOTION_EXHAUSTED", "promotion usage limit reached")
)
