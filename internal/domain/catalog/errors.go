package catalog

import "photosession/internal/pkg/apperror"

var (
	ErrPackageNotFound = apperror.New(apperror.KindNotFound, "PACKAGE_NOT_FOUND", "package not found")
	ErrServiceNotFound = apperror.New(apperror.KindNotFound, "SERVICE_NOT_FOUND", "service not found")
)
