package mcptool

type emptyArgs struct{}

type stepsArgs struct {
	Steps int `json:"steps,omitempty" jsonschema:"Number of revisions to roll back. Defaults to 1."`
}

type messageArgs struct {
	Message string `json:"message" jsonschema:"Revision description, e.g. 'add users table'."`
}
