package geometry

// Hand angles follow the counter-clockwise rotation convention of the sprite
// rotator: rotating an upward hand by 360-x degrees counter-clockwise points
// it x degrees clockwise from 12 o'clock.

// MinuteAngle returns the rotation for the minute hand.
func MinuteAngle(minute int) float64 {
	return 360 - float64(minute)*6
}

// HourAngle12 returns the rotation for the hour hand on a 12-hour dial.
func HourAngle12(hour, minute int) float64 {
	return 360 - float64(hour%12)*30 - float64(minute)*0.5
}

// HourAngle24 returns the rotation for the hour hand on a 24-hour dial.
func HourAngle24(hour, minute int) float64 {
	return 360 - float64(hour)*15 - float64(minute)*0.25
}
