package git

// MockOperations is a test double recording every call.
type MockOperations struct {
	Repository bool
	Branch     string

	AddedPaths []string
	Commits    []string
	Pushes     int

	AddErr    error
	CommitErr error
	PushErr   error
}

// NewMockOperations returns a mock that behaves like a clean repository.
func NewMockOperations() *MockOperations {
	return &MockOperations{Repository: true, Branch: "main"}
}

func (m *MockOperations) IsRepository(dir string) bool { return m.Repository }

func (m *MockOperations) Add(dir, path string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddedPaths = append(m.AddedPaths, path)
	return nil
}

func (m *MockOperations) Commit(dir, message string) error {
	if m.CommitErr != nil {
		return m.CommitErr
	}
	m.Commits = append(m.Commits, message)
	return nil
}

func (m *MockOperations) Push(dir string) error {
	if m.PushErr != nil {
		return m.PushErr
	}
	m.Pushes++
	return nil
}

func (m *MockOperations) CurrentBranch(dir string) string { return m.Branch }
