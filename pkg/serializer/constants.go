package serializer

// StdoutURI is the special output path indicating output should be written
// to stdout.
const StdoutURI = "-"
