package step

import "time"

// killGracePeriod is how long a step's process group is given to exit after
// the soft terminate signal before the hard kill backstop fires (§4.4,
// §5: "soft terminate, then a hard kill after a fixed grace period").
const killGracePeriod = 5 * time.Second
