// Package domain models the Breathing Rivers river-health game.
//
// # Rivers
//
// Three rivers are tracked: the Nile, the Amazon and the Yangtze. Each has a
// fixed catalogue entry (coordinates, land use, baseline flood and drought
// risk) and a table of baseline values for every simulated NASA parameter.
//
// # Synthetic NASA data
//
// There is no live satellite feed. Every simulated reading is derived from
// its river baseline with a uniform jitter of ±5%:
//
//	value = round2(base + (r - 0.5) * base * 0.1)   r ∈ [0, 1)
//
// An unknown parameter has a baseline of 0. Extreme weather is flagged with
// probability 0.1.
//
// # Gamification
//
// Users earn points from activities (quiz answers, cleanups, tree planting,
// daily-usage simulations). Levels are derived from points:
//
//	level = floor(points / 100) + 1
//
// Quiz answers also move a per-user river-health score that is clamped to
// [0, 100] and starts at 50.
//
// # QR codes
//
// Community event QR codes have the form BR_EVENT_<id>_<TYPE>_<unix millis>.
// A scanned code is accepted when it starts with "BR_" and is longer than ten
// characters. See [ValidQRCode].
package domain
