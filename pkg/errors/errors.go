package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")

	// Download fulfillment errors.
	ErrLinkNotFound   = fmt.Errorf("download link not found")
	ErrLinkExpired    = fmt.Errorf("download link expired")
	ErrLinkConsumed   = fmt.Errorf("download link already consumed")
	ErrCourseNotFound = fmt.Errorf("course not found")
	ErrNoFiles        = fmt.Errorf("no files available for download")
	ErrFetchFailed    = fmt.Errorf("media download failed")
	ErrArchiveCreate  = fmt.Errorf("failed to create archive")
	ErrInvalidPath    = fmt.Errorf("invalid path")

	// Store errors.
	ErrSiteNotFound  = fmt.Errorf("site not found")
	ErrUserNotFound  = fmt.Errorf("user not found")
	ErrOrderNotFound = fmt.Errorf("order not found")

	// Media service errors.
	ErrMediaIDEmpty = fmt.Errorf("media id cannot be empty")
	ErrMediaService = fmt.Errorf("media service request failed")

	// Payment errors.
	ErrInvalidCourseID  = fmt.Errorf("invalid course id")
	ErrUnknownPayment   = fmt.Errorf("unknown payment method")
	ErrPermissionDenied = fmt.Errorf("action not allowed")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
