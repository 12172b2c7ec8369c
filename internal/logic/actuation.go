package logic

// Outputs maps the motion flag onto both output signals. It has no memory:
// the outputs follow motion on every tick with no minimum on-time.
func Outputs(motion bool) Actuation {
	return Actuation{Primary: motion, Secondary: motion}
}
