package nin

// Version is the current release of nin.
const Version = "0.3.0"
