package testutil

// Words is a small English word list for tests. It has plenty of three and
// four letter words so board generation can always reach six words.
func Words() []string {
	return []string{
		"ACE", "ACT", "AGE", "AID", "AIM", "AIR", "ANT", "APE", "ARE", "ARM",
		"ART", "ATE", "BAT", "BED", "BEE", "CAB", "CAN", "CAR", "CAT", "COD",
		"DEN", "DOG", "EAR", "EAT", "EEL", "EGG", "END", "ERA", "HAT", "HEN",
		"ICE", "INK", "ION", "NET", "NOD", "NOR", "NOT", "NUT", "OAK", "OAR",
		"ODE", "ONE", "ORE", "OWL", "RAT", "RED", "ROD", "SAD", "SEA", "SET",
		"SIT", "TAN", "TAR", "TEA", "TEN", "TOE", "TON", "USE",
		"CATS", "DOGS", "BIRD", "FISH", "DEAR", "EARN", "EAST", "EDIT", "IRON",
		"NEAR", "NOTE", "RATE", "READ", "REST", "RISE", "ROSE", "SEAT", "SENT",
		"SIDE", "SITE", "STAR", "TEAR", "TIDE", "TONE", "TREE",
		"ALONE", "ARISE", "HEART", "NOISE", "OCEAN", "RAISE", "STONE", "TRAIN",
		"ORANGE", "STREAM", "CACTUS",
	}
}
