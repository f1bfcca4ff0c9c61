package domain

import dErrors "cartlog/pkg/domain-errors"

// Location is the geolocation of the device that performed a mutation, as
// reported by the client. Callers that cannot acquire a fix omit it; the
// audit log stores null coordinates in that case.
type Location struct {
	Lat float64
	Lng float64
}

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return dErrors.New(dErrors.CodeBadRequest, "latitude out of range [-90, 90]")
	}
	if l.Lng < -180 || l.Lng > 180 {
		return dErrors.New(dErrors.CodeBadRequest, "longitude out of range [-180, 180]")
	}
	return nil
}
