package extractor

// FunctionRecord is one public function declared inside a public type.
type FunctionRecord struct {
	Name        string `json:"name"`        // e.g. "resolve(flags:)"
	Declaration string `json:"declaration"` // Source-level signature
}

// ReportEntry groups the public functions of one public type.
type ReportEntry struct {
	ClassName    string           `json:"className"`    // Name of the enclosing class, struct or enum
	APIFunctions []FunctionRecord `json:"apiFunctions"` // In the order they appear in the dump
}

// Report is the extractor output: one entry per public type name, in
// first-seen order. Entries for the same name found in separate subtrees
// are merged.
type Report []ReportEntry

// Rules names the symbol dump keys and values the walk matches on.
// DefaultRules matches SourceKitten's Swift structure output.
type Rules struct {
	KindKey          string
	AccessibilityKey string
	NameKey          string
	DeclarationKey   string

	TypeKinds           []string // Kinds that open (or reset) a context
	FunctionKindPrefix  string   // Any kind with this prefix is a function
	PublicAccessibility string

	UnnamedContext     string
	UnnamedFunction    string
	UnknownDeclaration string
}

// DefaultRules returns the SourceKitten Swift rules.
func DefaultRules() Rules {
	return Rules{
		KindKey:          "key.kind",
		AccessibilityKey: "key.accessibility",
		NameKey:          "key.name",
		DeclarationKey:   "key.parsed_declaration",
		TypeKinds: []string{
			"source.lang.swift.decl.class",
			"source.lang.swift.decl.struct",
			"source.lang.swift.decl.enum",
		},
		FunctionKindPrefix:  "source.lang.swift.decl.function",
		PublicAccessibility: "source.lang.swift.accessibility.public",
		UnnamedContext:      "Unnamed Context",
		UnnamedFunction:     "Unnamed Function",
		UnknownDeclaration:  "unknown declaration",
	}
}
