package service

// AvailabilityPublisher pushes asset occupancy changes to live subscribers.
// Implementations must not block the caller.
type AvailabilityPublisher interface {
	PublishAvailability(assetID, stationID int64, available bool)
	PublishMaintenance(assetID, stationID int64, fault string)
}
