package domain

// Translation is the result of one remote translation. SourceLang is the
// normalized language the remote translated from, as it reported it; it is
// empty when the remote did not say.
type Translation struct {
	Text       string
	SourceLang string
}
