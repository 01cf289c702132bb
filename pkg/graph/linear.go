package graph

// Linear builds a container that chains className instances in series,
// output 1 of each feeding input 1 of the next, publishing the first
// proc's input 1 as "in" and the last proc's output 1 as "out". Adapted
// from the teacher's pkg/framework/dsp.Builder fluent chain, generalized
// from a fixed Processor interface to the graph's named-class factory.
func Linear(containerClass string, classNames ...string) (*Container, error) {
	c := NewContainer(containerClass)
	names := make([]string, len(classNames))
	for i, className := range classNames {
		name := slotKey(className, i)
		if _, err := c.AddProc(name, className); err != nil {
			return nil, err
		}
		names[i] = name
	}
	for i := 0; i < len(names)-1; i++ {
		if err := c.Connect(names[i], 1, names[i+1], 1); err != nil {
			return nil, err
		}
	}
	if len(names) > 0 {
		if err := c.PublishInput("in", names[0], 1); err != nil {
			return nil, err
		}
		if err := c.PublishOutput("out", names[len(names)-1], 1); err != nil {
			return nil, err
		}
	}
	return c, nil
}
