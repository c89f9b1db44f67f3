package errors

// Convenience functions for common error patterns

// Config and validation errors

func ConfigRequired(field string) *SiteBuilderError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *SiteBuilderError {
	return New(CategoryValidation, SeverityWarning, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Not-found errors

func SiteNotFound(siteID string) *SiteBuilderError {
	return New(CategoryNotFound, SeverityError, "site not found").
		WithContext("site_id", siteID)
}

func ScheduleNotFound(scheduleID string) *SiteBuilderError {
	return New(CategoryNotFound, SeverityError, "autopost schedule not found").
		WithContext("schedule_id", scheduleID)
}

func BuildNotFound(buildID string) *SiteBuilderError {
	return New(CategoryNotFound, SeverityError, "build not found").
		WithContext("build_id", buildID)
}

// Pipeline errors

func RenderFailed(siteID string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryRender, SeverityError, "site render failed").
		WithContext("site_id", siteID)
}

func RenderTimeout(siteID string, cause error) *SiteBuilderError {
	return WrapRetryable(cause, CategoryNetwork, SeverityError, "render trigger timed out").
		WithContext("site_id", siteID)
}

func PublishFailed(siteID string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryPublish, SeverityError, "publish failed").
		WithContext("site_id", siteID)
}

// BuildBusy signals that another build for the same site is already in flight.
// The admission policy rejects rather than queues; callers retry on a later tick.
func BuildBusy(siteID string) *SiteBuilderError {
	return WrapRetryable(nil, CategoryPublish, SeverityWarning, "build already in progress").
		WithContext("site_id", siteID)
}

func AutopostFailed(scheduleID string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryAutopost, SeverityError, "autopost run failed").
		WithContext("schedule_id", scheduleID)
}

// Persistence errors

func StoreError(operation string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryStore, SeverityError, "store operation failed").
		WithContext("operation", operation)
}

func OutputWriteError(path string, cause error) *SiteBuilderError {
	return Wrap(cause, CategoryFileSystem, SeverityError, "output write failed").
		WithContext("path", path)
}
