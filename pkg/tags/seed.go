// CLAUDE:SUMMARY Built-in canonical tag dictionary (languages, frameworks, tooling, CS concepts) used to seed every Normalizer.
package tags

// Group is one canonical tag and the spellings that resolve to it.
type Group struct {
	Canonical string   `json:"canonical" yaml:"canonical"`
	Aliases   []string `json:"aliases" yaml:"aliases"`
}

// Seed returns a copy of the built-in dictionary, in declaration order.
func Seed() []Group {
	out := make([]Group, len(seed))
	for i, g := range seed {
		out[i] = Group{Canonical: g.Canonical, Aliases: append([]string(nil), g.Aliases...)}
	}
	return out
}

// Every alias appears under exactly one canonical. Symbol spellings such as
// "c++" or "c#" are left out: the ASCII filter reduces both to "c".
var seed = []Group{
	// Core web technologies
	{"html", []string{"html", "html5"}},
	{"css", []string{"css", "css3"}},

	// Programming languages
	{"javascript", []string{"js", "javascript", "es6", "ecmascript"}},
	{"typescript", []string{"ts", "typescript"}},
	{"python", []string{"py", "python", "python3"}},
	{"ruby", []string{"rb", "ruby"}},
	{"php", []string{"php"}},
	{"java", []string{"java", "jdk"}},
	{"csharp", []string{"csharp", "c-sharp"}},
	{"cpp", []string{"cpp", "cplusplus", "c-plus-plus"}},
	{"golang", []string{"go", "golang"}},
	{"rust", []string{"rust"}},
	{"erlang", []string{"erlang"}},

	// Web frameworks. Framework-specific JSX spellings fold into the framework.
	{"react", []string{"react", "reactjs", "react.js", "react-jsx"}},
	{"vue", []string{"vue", "vuejs", "vue.js", "vue-jsx"}},
	{"angular", []string{"angular", "angularjs"}},
	{"svelte", []string{"svelte"}},
	{"nextjs", []string{"next", "nextjs", "next.js"}},
	{"nuxtjs", []string{"nuxt", "nuxtjs", "nuxt.js"}},

	// Backend frameworks
	{"nodejs", []string{"node", "nodejs"}},
	{"express", []string{"express", "expressjs"}},
	{"django", []string{"django"}},
	{"flask", []string{"flask"}},
	{"rails", []string{"rails", "rubyonrails"}},
	{"spring", []string{"spring", "springboot"}},

	// CSS frameworks
	{"tailwindcss", []string{"tailwind", "tailwindcss"}},
	{"bootstrap", []string{"bootstrap"}},
	{"materialui", []string{"materialui", "mui"}},

	// Databases
	{"postgresql", []string{"postgres", "postgresql", "pg"}},
	{"mongodb", []string{"mongo", "mongodb"}},
	{"mysql", []string{"mysql"}},
	{"sqlite", []string{"sqlite"}},
	{"redis", []string{"redis"}},

	// Cloud and DevOps
	{"aws", []string{"aws", "amazonwebservices"}},
	{"gcp", []string{"gcp", "googlecloud"}},
	{"azure", []string{"azure", "microsoftazure"}},
	{"docker", []string{"docker"}},
	{"kubernetes", []string{"k8s", "kubernetes"}},
	{"terraform", []string{"terraform"}},

	// Mobile
	{"reactnative", []string{"reactnative", "react-native"}},
	{"flutter", []string{"flutter"}},

	// Tools
	{"vscode", []string{"vscode", "vsc"}},
	{"git", []string{"git"}},
	{"github", []string{"github"}},
	{"gitlab", []string{"gitlab"}},

	// Categories
	{"frontend", []string{"frontend", "front-end"}},
	{"backend", []string{"backend", "back-end"}},
	{"fullstack", []string{"fullstack", "full-stack"}},
	{"devops", []string{"devops"}},
	{"webdevelopment", []string{"webdevelopment", "webdev", "web-development"}},
	{"mobile", []string{"mobile", "mobiledev"}},
	{"database", []string{"db", "database"}},
	{"roi", []string{"roi", "returnoninvestment", "return-on-investment"}},
	{"artificialintelligence", []string{"ai", "artificialintelligence", "artificial-intelligence"}},

	// Computer science
	{"computerscience", []string{"cs", "computerscience", "computer-science", "compsci"}},
	{"algorithm", []string{"algorithm", "algorithms", "algo"}},
	{"datastructure", []string{"datastructure", "datastructures", "data-structure", "ds"}},
	{"computability", []string{"computability", "computation", "computable"}},
	{"complexity", []string{"complexity", "computationalcomplexity", "complexitytheory"}},
	{"turingmachine", []string{"turingmachine", "turing-machine"}},
	{"functional", []string{"functional", "functionalprogramming", "fp"}},
	{"objectoriented", []string{"oop", "objectoriented", "object-oriented"}},
	{"imperative", []string{"imperative", "procedural"}},
	{"declarative", []string{"declarative"}},
	{"cryptography", []string{"crypto", "cryptography", "encryption"}},
	{"networking", []string{"networking", "networks", "network"}},
	{"operatingsystem", []string{"os", "operatingsystem", "operating-system"}},
	{"compiler", []string{"compiler", "compilers", "compilation"}},
	{"parallelcomputing", []string{"parallel", "parallelcomputing", "concurrency"}},
	// "turing" alone is ambiguous between the machine, the test and the person.
	{"alanturing", []string{"alanturing", "alan-turing"}},
	{"turingtest", []string{"turingtest", "turing-test"}},
	{"churchturing", []string{"churchturing", "church-turing"}},

	// Data structures and algorithms
	{"array", []string{"array", "arrays"}},
	{"hash", []string{"hash", "hashtable", "hashmap", "hash-table", "hash-map"}},
	{"linkedlist", []string{"linkedlist", "linked-list", "llist"}},
	{"queue", []string{"queue", "queues"}},
	{"stack", []string{"stack", "stacks"}},
	{"tree", []string{"tree", "trees", "binarytree"}},
	{"graph", []string{"graph", "graphs"}},
	{"sorting", []string{"sorting", "sort", "sorts"}},
	{"searching", []string{"searching", "search", "searches"}},
	{"recursion", []string{"recursion", "recursive"}},
	{"dynamicprogramming", []string{"dp", "dynamicprogramming", "dynamic-programming"}},
}
