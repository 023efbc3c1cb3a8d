package xsail

import (
	"strconv"
	"time"
)

// MessageType tags the payload schema of a Message. The set is closed per
// build but extensible: new variants append new tags.
type MessageType uint16

const (
	MessageUnknown MessageType = iota
	MessageDataRequest
	MessageWindData
	MessageCompassData
	MessageGPSData
	MessageStateMessage
	MessageWaypointData
	MessageCourseData
	MessageNavigationControl
	MessageWindState
	MessageActuatorControl
	MessageActuatorFeedback
	MessageAISData
	MessageServerWaypointsReceived
	MessageStatusReport
)

var messageTypeNames = map[MessageType]string{
	MessageUnknown:                 "Unknown",
	MessageDataRequest:             "DataRequest",
	MessageWindData:                "WindData",
	MessageCompassData:             "CompassData",
	MessageGPSData:                 "GPSData",
	MessageStateMessage:            "StateMessage",
	MessageWaypointData:            "WaypointData",
	MessageCourseData:              "CourseData",
	MessageNavigationControl:       "NavigationControl",
	MessageWindState:               "WindState",
	MessageActuatorControl:         "ActuatorControl",
	MessageActuatorFeedback:        "ActuatorFeedback",
	MessageAISData:                 "AISData",
	MessageServerWaypointsReceived: "ServerWaypointsReceived",
	MessageStatusReport:            "StatusReport",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return "MessageType(" + strconv.Itoa(int(t)) + ")"
}

// NodeID identifies a participant on the bus. NodeNone marks broadcast
// destinations and anonymous producers.
type NodeID uint16

const (
	NodeNone NodeID = iota
	NodeWindSensor
	NodeCompass
	NodeGPS
	NodeStateEstimation
	NodeWaypoint
	NodeLineFollow
	NodeLocalNavigation
	NodeLowLevelController
	NodeSailControl
	NodeCourseRegulator
	NodeActuator
	NodeMarineSensor
	NodeAIS
	NodeXbeeSync
	NodeHTTPSync
	NodeLogger
	NodeSimulator
	NodeBridge
)

var nodeIDNames = map[NodeID]string{
	NodeNone:               "None",
	NodeWindSensor:         "WindSensor",
	NodeCompass:            "Compass",
	NodeGPS:                "GPS",
	NodeStateEstimation:    "StateEstimation",
	NodeWaypoint:           "Waypoint",
	NodeLineFollow:         "LineFollow",
	NodeLocalNavigation:    "LocalNavigation",
	NodeLowLevelController: "LowLevelController",
	NodeSailControl:        "SailControl",
	NodeCourseRegulator:    "CourseRegulator",
	NodeActuator:           "Actuator",
	NodeMarineSensor:       "MarineSensor",
	NodeAIS:                "AIS",
	NodeXbeeSync:           "XbeeSync",
	NodeHTTPSync:           "HTTPSync",
	NodeLogger:             "Logger",
	NodeSimulator:          "Simulator",
	NodeBridge:             "Bridge",
}

func (id NodeID) String() string {
	if s, ok := nodeIDNames[id]; ok {
		return s
	}
	return "NodeID(" + strconv.Itoa(int(id)) + ")"
}

// PoolStats returns telemetry about the observer pool.
type PoolStats struct {
	Dropped      uint64 // Events dropped due to full buffer
	Processed    uint64 // Events handed to every observer
	Panics       uint64 // Recovered observer panics
	ActiveEvents int    // Current queue depth
	Workers      int    // Number of dispatch goroutines
	BufferSize   int    // Channel capacity
}

// Metrics defines observable telemetry for the bus.
type Metrics struct {
	Sent              uint64 // Messages accepted by SendMessage
	Dispatched        uint64 // Messages taken off the queue and fully delivered
	Deliveries        uint64 // ProcessMessage invocations
	Undeliverable     uint64 // Direct messages whose destination is not registered
	Unrouted          uint64 // Broadcasts nobody subscribed to
	HandlerFaults     uint64 // Recovered ProcessMessage panics
	EventsDropped     uint64 // Observer events dropped by the pool
	ObserverPanics    uint64 // Recovered OnEvent panics
	QueueDepth        int
	Registered        int
	AvgDispatchTimeMs float64
}

// HealthStatus indicates bus health for probes.
type HealthStatus struct {
	Status    string // "healthy", "degraded", "unhealthy"
	Metrics   Metrics
	Timestamp time.Time
	Message   string
}
