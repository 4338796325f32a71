package httpagent

import "mockmate/interview/internal/llm"

// Register HTTP agent provider on package import
func init() {
	llm.RegisterProvider("http", func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config), nil
	})
}
