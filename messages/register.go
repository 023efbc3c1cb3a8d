package messages

import "github.com/trickstertwo/xsail"

func init() {
	xsail.RegisterDecoder(xsail.MessageDataRequest, decodeDataRequest)
	xsail.RegisterDecoder(xsail.MessageServerWaypointsReceived, decodeServerWaypointsReceived)
	xsail.RegisterDecoder(xsail.MessageStateMessage, decodeStateMessage)
	xsail.RegisterDecoder(xsail.MessageWaypointData, decodeWaypointData)
	xsail.RegisterDecoder(xsail.MessageCourseData, decodeCourseData)
	xsail.RegisterDecoder(xsail.MessageNavigationControl, decodeNavigationControl)
	xsail.RegisterDecoder(xsail.MessageCompassData, decodeCompassData)
	xsail.RegisterDecoder(xsail.MessageGPSData, decodeGPSData)
	xsail.RegisterDecoder(xsail.MessageWindData, decodeWindData)
	xsail.RegisterDecoder(xsail.MessageWindState, decodeWindState)
	xsail.RegisterDecoder(xsail.MessageAISData, decodeAISData)
	xsail.RegisterDecoder(xsail.MessageActuatorControl, decodeActuatorControl)
	xsail.RegisterDecoder(xsail.MessageActuatorFeedback, decodeActuatorFeedback)
	xsail.RegisterDecoder(xsail.MessageStatusReport, decodeStatusReport)
}
