package payment

import "context"

// FreeMethod is the fallback method for sites without a configured payment
// gateway. It only ever sees paid courses by misconfiguration, so it refuses
// to initiate anything.
type FreeMethod struct{}

// Name returns the method identifier used in site settings.
func (FreeMethod) Name() string { return "free" }

// Initiate always fails: a site without a gateway cannot charge.
func (FreeMethod) Initiate(_ context.Context, req InitiateRequest) (string, error) {
	return "", errPaidCourseWithoutGateway(req.Course.CourseID)
}
