package payment

import "fmt"

func errPaidCourseWithoutGateway(courseID string) error {
	return fmt.Errorf("course %s has a cost but the site has no payment gateway configured", courseID)
}
