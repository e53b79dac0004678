package tools

// Config carries the naming every tool embeds. Title is the wire name the
// decision model addresses the tool by, so overriding it also renames the
// tool in the catalog and the router table.
type Config struct {
	// title the wire name of the tool
	title string
	// description the catalog line shown to the decision model
	description string
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}
