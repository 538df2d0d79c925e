package domain

import (
	"fmt"
	"math/rand"
)

// Spoken lines for the defined transitions. Deliberately small: personality
// and response generation live behind the command router, not here.
var (
	wakeAcks = []string{
		"I'm listening.",
		"Yes, go ahead.",
		"I'm here.",
	}

	sleepLines = []string{
		"Going into sleep mode. I'll be right here.",
		"Resting for a bit. Say the wake phrase when you need me.",
		"Powering down softly. Wake me anytime.",
	}
)

// LineNothingHeard is spoken when an active session expires without a single
// command having been dispatched.
const LineNothingHeard = "I didn't hear anything."

// PickWakeAck returns a wake acknowledgment line.
func PickWakeAck() string {
	return wakeAcks[rand.Intn(len(wakeAcks))]
}

// PickSleepLine returns a line spoken when entering sleep mode.
func PickSleepLine() string {
	return sleepLines[rand.Intn(len(sleepLines))]
}

// AsleepReminder is the rejection spoken for non-wake speech while sleeping.
func AsleepReminder(wakePhrase string) string {
	return fmt.Sprintf("I'm asleep. Say %q to wake me.", wakePhrase)
}

// Greeting returns a time-of-day greeting for the given hour.
func Greeting(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Good morning."
	case hour >= 12 && hour < 17:
		return "Good afternoon."
	case hour >= 17 && hour < 22:
		return "Good evening."
	default:
		return "Hello."
	}
}
