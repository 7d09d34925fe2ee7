package storage

import (
	"fmt"

	"github.com/mbracken/njord/internal/domain"
)

var (
	// ErrS3CredentialsRequired is returned when S3 credentials are missing.
	ErrS3CredentialsRequired = &domain.Error{Code: domain.EINVALID, Message: "S3 credentials are required"}

	// ErrS3BucketRequired is returned when the S3 bucket name is missing.
	ErrS3BucketRequired = &domain.Error{Code: domain.EINVALID, Message: "S3 bucket name is required"}
)

// ErrFileNotFound creates an error for a missing stored file.
func ErrFileNotFound(key string) error {
	return &domain.Error{
		Code:    domain.ENOTFOUND,
		Message: fmt.Sprintf("file not found: %s", key),
	}
}

// ErrUnknownProvider creates an error for unknown storage providers.
func ErrUnknownProvider(provider string) error {
	return &domain.Error{
		Code:    domain.EINVALID,
		Message: fmt.Sprintf("unknown storage provider: %s", provider),
	}
}
