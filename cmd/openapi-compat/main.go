// Command openapi-compat guards the API contract the web front and the admin
// CLI rely on. It checks the generated swagger document for every operation
// and response code apiclient depends on and, given a base document, reports
// paths, operations and response codes the revision removed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"lifewood/docs"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// clientOperations are the operations apiclient calls, with the response
// codes its callers branch on. Registration treats 400 and 409 on create as
// "already applied".
var clientOperations = map[string][]string{
	"get /applicants":                   {"200"},
	"post /applicants":                  {"201", "400", "409"},
	"get /applicants/search":            {"200"},
	"get /applicants/project/{project}": {"200"},
	"get /applicants/{id}":              {"200", "404"},
	"put /applicants/{id}":              {"200"},
	"delete /applicants/{id}":           {"200"},
	"get /applicants/{id}/resume":       {"200", "404"},
	"put /applicants/{id}/resume":       {"200"},
	"put /applicants/{id}/status":       {"200"},
	"put /applicants/{id}/approve":      {"200"},
	"put /applicants/{id}/decline":      {"200"},
	"get /projects":                     {"200"},
	"post /admin/login":                 {"200", "400"},
	"get /admin/validate":               {"200", "401"},
	"post /admin/logout":                {"200"},
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func main() {
	basePath := flag.String("base", "", "base swagger document (optional)")
	revisionPath := flag.String("revision", "", "revision swagger document (default: the generated docs package)")
	flag.Parse()

	revisionSpec, err := loadRevision(*revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := checkClient(revisionSpec)
	if strings.TrimSpace(*basePath) != "" {
		baseSpec, err := loadSpecFile(*basePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
			os.Exit(1)
		}
		issues = append(issues, compare(baseSpec, revisionSpec)...)
	}

	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "openapi compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}

func loadRevision(path string) (parsedSpec, error) {
	if strings.TrimSpace(path) == "" {
		return parseSpec([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	return loadSpecFile(path)
}

func loadSpecFile(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}

// parseSpec reads a swagger document in YAML or JSON.
func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOpsRaw, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range pathOpsRaw {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}
			ops[method] = operation{Responses: responseCodes(methodMap["responses"])}
		}
		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

func responseCodes(raw interface{}) map[string]struct{} {
	codes := make(map[string]struct{})
	responses, ok := toMap(raw)
	if !ok {
		return codes
	}
	for code := range responses {
		if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
			codes[normalized] = struct{}{}
		}
	}
	return codes
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// checkClient reports client operations or response codes missing from spec.
func checkClient(spec parsedSpec) []string {
	var issues []string
	for key, codes := range clientOperations {
		method, path, _ := strings.Cut(key, " ")
		op, ok := spec.Paths[path][method]
		if !ok {
			issues = append(issues, fmt.Sprintf("client operation missing: %s %s", strings.ToUpper(method), path))
			continue
		}
		for _, code := range codes {
			if _, ok := op.Responses[code]; !ok {
				issues = append(issues, fmt.Sprintf("client response missing: %s %s -> %s",
					strings.ToUpper(method), path, code))
			}
		}
	}
	sort.Strings(issues)
	return issues
}

func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
