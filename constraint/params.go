package constraint

import (
	"fmt"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/helper"
	tabledefinition "github.com/relloyd/aorist/table-definition"
	"github.com/relloyd/aorist/universe"
)

// replication gathers what the replication constraints need to know about one
// ReplicationStorageSetup.
type replication struct {
	dataset *universe.DataSet
	asset   universe.Asset
	setup   universe.StorageSetup
	attrs   []universe.Attribute
}

func newReplication(n *universe.Node) (*replication, error) {
	setup, ok := n.Object.(universe.StorageSetup)
	if !ok || setup.Remote == nil || setup.TmpEncoding == nil {
		return nil, fmt.Errorf("expected a complete replication storage setup at %q", n.Path())
	}
	a, d, err := assetOf(n.Parent)
	if err != nil {
		return nil, err
	}
	t, err := d.TemplateForAsset(a)
	if err != nil {
		return nil, err
	}
	attrs, err := a.AttributesOf(t)
	if err != nil {
		return nil, err
	}
	return &replication{dataset: d, asset: a, setup: setup, attrs: attrs}, nil
}

// assetOf returns the asset held by n and its dataset.
func assetOf(n *universe.Node) (universe.Asset, *universe.DataSet, error) {
	if n == nil {
		return universe.Asset{}, nil, errors.New("concept has no parent asset")
	}
	a, ok := n.Object.(universe.Asset)
	if !ok {
		return a, nil, fmt.Errorf("expected an asset at %q but found %v", n.Path(), n.Type)
	}
	dn := n.NearestAncestor(universe.ConceptDataSet)
	if dn == nil {
		return a, nil, fmt.Errorf("asset %q is not part of a dataset", a.Name)
	}
	return a, dn.Object.(*universe.DataSet), nil
}

func (r *replication) compression() string {
	if e := r.setup.Remote.Encoding; e != nil && e.Compression != nil {
		return e.Compression.Type
	}
	return ""
}

func (r *replication) headerLines() int {
	if e := r.setup.Remote.Encoding; e != nil && e.Header != nil {
		return e.Header.Lines()
	}
	return 0
}

func (r *replication) sourceEncoding() universe.Encoding {
	if r.setup.Remote.Encoding != nil {
		return *r.setup.Remote.Encoding
	}
	return universe.Encoding{Type: universe.EncodingCSV}
}

func (r *replication) needsConversion() bool {
	return r.sourceEncoding().Type != r.setup.TmpEncoding.Type
}

func (r *replication) file(suffix string) string {
	return path.Join(r.setup.TmpDir, r.asset.Name+"."+suffix)
}

func (r *replication) downloadFile() string     { return r.file("download") }
func (r *replication) decompressedFile() string { return r.file("decompressed") }
func (r *replication) headerlessFile() string   { return r.file("noheader") }
func (r *replication) convertedFile() string    { return r.file(r.setup.TmpEncoding.Extension()) }

// stageFiles returns the file written by each active stage, in order, up to and excluding stage.
func (r *replication) stageFiles(stage string) []string {
	retval := []string{r.downloadFile()}
	if stage == DecompressDownloadedData {
		return retval
	}
	if r.compression() != "" {
		retval = append(retval, r.decompressedFile())
	}
	if stage == RemoveFileHeader {
		return retval
	}
	if r.headerLines() > 0 {
		retval = append(retval, r.headerlessFile())
	}
	if stage == ConvertToLocalEncoding {
		return retval
	}
	if r.needsConversion() {
		retval = append(retval, r.convertedFile())
	}
	return retval
}

// inputFile returns the file that stage reads.
func (r *replication) inputFile(stage string) string {
	files := r.stageFiles(stage)
	return files[len(files)-1]
}

func isDelimited(e universe.Encoding) bool {
	return e.Type == universe.EncodingCSV || e.Type == universe.EncodingTSV
}

func escapedDelimiter(d string) string {
	if d == "\t" {
		return `\t`
	}
	return d
}

// uploadTarget describes where UploadDataToLocal copies data to.
func uploadTarget(s universe.Storage, tableName string) map[string]interface{} {
	loc := s.Location
	if loc.Type == universe.LocationHive && loc.Inner != nil {
		loc = *loc.Inner
	}
	t := map[string]interface{}{"type": s.Type, "path": "", "file": "", "database": ""}
	switch loc.Type {
	case universe.LocationAlluxio:
		t["kind"] = "alluxio"
		t["path"] = path.Join("/", loc.Path, tableName)
	case universe.LocationLocalFileSystem:
		t["kind"] = "local"
		t["path"] = path.Join(loc.Path, tableName)
	case universe.LocationMinio:
		t["kind"] = "minio"
		t["path"] = path.Join(loc.Name, tableName)
	case universe.LocationSQLite:
		t["kind"] = "sqlite"
		t["file"] = loc.File
	case universe.LocationPostgres:
		t["kind"] = "postgres"
		t["database"] = loc.Database
	default:
		t["kind"] = strings.ToLower(strings.TrimSuffix(loc.Type, "Location"))
	}
	return t
}

func (r *replication) params(ctx *Context) (map[string]interface{}, error) {
	src := r.sourceEncoding()
	tmp := *r.setup.TmpEncoding
	remote := r.setup.Remote.Location
	tableName := helper.ToSnakeCase(r.asset.Name)
	columnNames := make([]string, 0, len(r.attrs))
	for _, a := range r.attrs {
		columnNames = append(columnNames, a.Name)
	}
	orcSchema, err := tabledefinition.OrcSchema(r.attrs)
	if err != nil {
		return nil, err
	}
	targets := make([]interface{}, 0, len(r.setup.Local))
	filesOnly := true
	for _, s := range r.setup.Local {
		t := uploadTarget(s, tableName)
		switch t["kind"] {
		case "local", "alluxio", "minio":
		default:
			filesOnly = false
		}
		targets = append(targets, t)
	}
	remoteBucket, remoteKey := remote.Bucket, remote.Key
	if remote.Type == universe.LocationGCS {
		remoteKey = remote.Blob
	}
	return map[string]interface{}{
		"datasetName":         r.dataset.Name,
		"assetName":           r.asset.Name,
		"tableName":           tableName,
		"remoteUrl":           remote.URL(),
		"remoteLocationType":  remote.Type,
		"remoteBucket":        remoteBucket,
		"remoteKey":           remoteKey,
		"remotePath":          remote.Path,
		"tmpDir":              r.setup.TmpDir,
		"compression":         r.compression(),
		"headerLines":         r.headerLines(),
		"sourceEncoding":      src.Type,
		"sourceDelimited":     isDelimited(src),
		"sourceDelimiter":     src.Delimiter(),
		"tmpEncoding":         tmp.Type,
		"tmpDelimited":        isDelimited(tmp),
		"tmpDelimiter":        tmp.Delimiter(),
		"tmpDelimiterEscaped": escapedDelimiter(tmp.Delimiter()),
		"columnNames":         columnNames,
		"orcSchema":           orcSchema,
		"fileName":            r.asset.Name + "." + tmp.Extension(),
		"targets":             targets,
		"filesOnly":           filesOnly,
		"prestoArgs":          dialect.PrestoArgs(ctx.Universe.Endpoints),
		"postgresArgs":        postgresArgs(ctx.Universe.Endpoints),
	}, nil
}

// stageParams returns params for a replication stage with its input and output files set.
func stageParams(stage string, output func(*replication) string) ParamsFunc {
	return func(n *universe.Node, ctx *Context) (map[string]interface{}, error) {
		r, err := newReplication(n)
		if err != nil {
			return nil, err
		}
		p, err := r.params(ctx)
		if err != nil {
			return nil, err
		}
		if stage != DownloadDataFromRemote {
			p["inputFile"] = r.inputFile(stage)
		}
		if output != nil {
			p["outputFile"] = output(r)
		}
		return p, nil
	}
}

func replicationActive(pred func(*replication) bool) ActiveFunc {
	return func(n *universe.Node, ctx *Context) bool {
		r, err := newReplication(n)
		if err != nil {
			return false
		}
		return pred == nil || pred(r)
	}
}

func postgresArgs(e universe.EndpointConfig) string {
	p := e.Postgres
	if p == nil {
		return ""
	}
	port := p.Port
	if port == 0 {
		port = universe.DefaultPostgresPort
	}
	return fmt.Sprintf("-h %v -p %v -U %v", dialect.ShellQuote(p.Server), port, dialect.ShellQuote(p.Username))
}

// tableParams renders the DDL of every table storage an asset replicates to.
func tableParams(n *universe.Node, ctx *Context) (map[string]interface{}, error) {
	a, d, err := assetOf(n)
	if err != nil {
		return nil, err
	}
	t, err := d.TemplateForAsset(a)
	if err != nil {
		return nil, err
	}
	attrs, err := a.AttributesOf(t)
	if err != nil {
		return nil, err
	}
	if v := tabledefinition.NullableKeyViolations(attrs); len(v) > 0 {
		return nil, fmt.Errorf("key attributes must not be nullable: %v", strings.Join(v, ", "))
	}
	tableName := helper.ToSnakeCase(a.Name)
	tables := make([]interface{}, 0)
	allPresto := true
	for _, s := range a.Setup.Local {
		if !s.IsTable() {
			continue
		}
		target, err := tabledefinition.TargetForStorage(s)
		if err != nil {
			return nil, err
		}
		ddl, err := tabledefinition.CreateTable(target, tableName, attrs, tabledefinition.TableTags(s))
		if err != nil {
			return nil, err
		}
		allPresto = allPresto && target == "presto"
		tables = append(tables, map[string]interface{}{
			"target":   target,
			"ddl":      ddl,
			"file":     s.Location.File,
			"database": s.Location.Database,
		})
	}
	return map[string]interface{}{
		"datasetName":  d.Name,
		"assetName":    a.Name,
		"tableName":    tableName,
		"tables":       tables,
		"allPresto":    allPresto && len(tables) > 0,
		"prestoArgs":   dialect.PrestoArgs(ctx.Universe.Endpoints),
		"postgresArgs": postgresArgs(ctx.Universe.Endpoints),
	}, nil
}

func hasTableStorage(n *universe.Node, _ *Context) bool {
	a, ok := n.Object.(universe.Asset)
	if !ok || a.Setup.Type != universe.StorageSetupReplication {
		return false
	}
	for _, s := range a.Setup.Local {
		if s.IsTable() {
			return true
		}
	}
	return false
}

func isReplicatedAsset(n *universe.Node, _ *Context) bool {
	a, ok := n.Object.(universe.Asset)
	return ok && a.Setup.Type == universe.StorageSetupReplication
}

func endpointURL(server string, port int) string {
	if strings.HasPrefix(server, "http://") || strings.HasPrefix(server, "https://") {
		return fmt.Sprintf("%v:%v", server, port)
	}
	return fmt.Sprintf("http://%v:%v", server, port)
}

func giteaParams(n *universe.Node, ctx *Context) (map[string]interface{}, error) {
	u := n.Object.(universe.User)
	g := *ctx.Universe.Endpoints.Gitea
	if g.Server == "" {
		g.Server = universe.DefaultGiteaServer
	}
	if g.Port == 0 {
		g.Port = universe.DefaultGiteaPort
	}
	return map[string]interface{}{
		"unixName": u.UnixName,
		"giteaUrl": endpointURL(g.Server, g.Port),
		"giteaUser": map[string]interface{}{
			"username":   u.UnixName,
			"login_name": u.UnixName,
			"email":      u.Email,
			"full_name":  u.FirstName + " " + u.LastName,
		},
	}, nil
}

func rangerParams(n *universe.Node, ctx *Context) (map[string]interface{}, error) {
	u := n.Object.(universe.User)
	r := *ctx.Universe.Endpoints.Ranger
	if r.Port == 0 {
		r.Port = universe.DefaultRangerPort
	}
	perms, err := ctx.Universe.UserPermissions()
	if err != nil {
		return nil, err
	}
	role := "ROLE_USER"
	if helper.StringSliceContains(perms[u.UnixName], universe.PermissionRangerAdmin) {
		role = "ROLE_SYS_ADMIN"
	}
	return map[string]interface{}{
		"unixName":  u.UnixName,
		"rangerUrl": endpointURL(r.Server, r.Port),
		"rangerUser": map[string]interface{}{
			"name":         u.UnixName,
			"firstName":    u.FirstName,
			"lastName":     u.LastName,
			"emailAddress": u.Email,
			"userRoleList": []string{role},
		},
	}, nil
}
