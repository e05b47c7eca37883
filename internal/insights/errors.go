package insights

import "errors"

// ErrNotConfigured is returned by a disabled bridge for every request;
// no call ever reaches the external service.
var ErrNotConfigured = errors.New("AI service not configured. Please set GEMINI_API_KEY environment variable.")
