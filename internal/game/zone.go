package game

// ZoneCaptureStatus is the phase a zone's capture state machine occupies.
type ZoneCaptureStatus int

const (
	ZoneNeutral ZoneCaptureStatus = iota
	ZoneBeingCaptured
	ZoneCaptured
	ZoneBeingContested
	ZoneBeingRetaken
)

// Zone is an axis-aligned rectangular region of the grid whose occupancy
// drives a capture state machine feeding into per-tick scoring.
type Zone struct {
	ID                 byte // stable single-character identifier
	X, Y, Width, Height int

	Status   ZoneCaptureStatus
	Holder   string // player id, set for Captured/BeingCaptured/BeingRetaken defender-or-attacker
	Attacker string // only meaningful in BeingRetaken
	Progress int    // ticks accumulated toward CaptureTicks
}

// Contains reports whether tile (x,y) lies within the zone's rectangle.
func (z *Zone) Contains(x, y int) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// occupants counts, per player id, how many of that player's tanks overlap
// the zone. Built by the engine once per tick from the live tank set.
type zoneOccupants = map[string]int

// soleOccupant returns the single player occupying the zone, or "" if zero
// or more than one player is present.
func soleOccupant(occ zoneOccupants) string {
	if len(occ) != 1 {
		return ""
	}
	for p := range occ {
		return p
	}
	return ""
}

// Advance runs one tick of the capture state machine given this tick's
// occupancy, per the table: Neutral/BeingCaptured/Captured/BeingRetaken
// transitions, with simultaneous multi-player overlap always resolving to
// a contested state (the tie-break decided for this server).
func (z *Zone) Advance(occ zoneOccupants, captureTicks int) {
	contested := len(occ) > 1
	sole := soleOccupant(occ)

	switch z.Status {
	case ZoneNeutral:
		switch {
		case contested:
			z.Status = ZoneBeingContested
			z.Progress = 1
		case sole != "":
			z.Status = ZoneBeingCaptured
			z.Holder = sole
			z.Progress = 1
		}

	case ZoneBeingCaptured:
		switch {
		case sole != "" && sole == z.Holder:
			z.Progress++
			if z.Progress >= captureTicks {
				z.Status = ZoneCaptured
				z.Progress = 0
			}
		case sole == "" && !contested:
			z.Progress--
			if z.Progress <= 0 {
				z.Status = ZoneNeutral
				z.Holder = ""
				z.Progress = 0
			}
		default:
			// other player(s) present, or contested: freeze progress, go contested
			z.Status = ZoneBeingContested
		}

	case ZoneCaptured:
		switch {
		case sole != "" && sole == z.Holder:
			// no-op, holder retains
		case sole != "" && sole != z.Holder:
			z.Status = ZoneBeingRetaken
			z.Attacker = sole
			z.Progress = 1
		case contested:
			z.Status = ZoneBeingContested
		}

	case ZoneBeingRetaken:
		switch {
		case sole != "" && sole == z.Attacker:
			z.Progress++
			if z.Progress >= captureTicks {
				z.Status = ZoneCaptured
				z.Holder = z.Attacker
				z.Attacker = ""
				z.Progress = 0
			}
		case sole != "" && sole == z.Holder:
			z.Progress--
			if z.Progress <= 0 {
				z.Status = ZoneCaptured
				z.Attacker = ""
				z.Progress = 0
			}
		default:
			z.Status = ZoneBeingContested
		}

	case ZoneBeingContested:
		switch {
		case sole != "" && z.Holder != "" && sole == z.Holder:
			z.Status = ZoneCaptured
		case sole != "" && z.Holder == "":
			z.Status = ZoneBeingCaptured
			z.Holder = sole
		case sole == "" && !contested && z.Holder == "":
			z.Status = ZoneNeutral
		}
	}
}

// AwardsScore reports whether the current holder earns a score point this
// tick: only a fully Captured zone with an unambiguous holder pays out.
func (z *Zone) AwardsScore() (playerID string, ok bool) {
	if z.Status == ZoneCaptured && z.Holder != "" {
		return z.Holder, true
	}
	return "", false
}
