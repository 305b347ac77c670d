package universe

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/helper"
)

// Validate checks the universe as a whole: mandatory fields, unique names, that
// groups and role bindings refer to known users and that every asset refers to a
// known datum template, known attributes and a complete storage setup.
func (u *Universe) Validate() error {
	if err := helper.ValidateStructIsPopulated(struct {
		Name string `mandatory:"yes" errorTxt:"universe name"`
	}{u.Name}); err != nil {
		return err
	}
	users := make(map[string]struct{}, len(u.Users))
	for _, usr := range u.Users {
		if err := helper.ValidateStructIsPopulated(usr); err != nil {
			return errors.Wrapf(err, "user %q", usr.UnixName)
		}
		if _, ok := users[usr.UnixName]; ok {
			return fmt.Errorf("duplicate user unixName %q", usr.UnixName)
		}
		users[usr.UnixName] = struct{}{}
	}
	groups := make(map[string]struct{}, len(u.Groups))
	for _, g := range u.Groups {
		if err := helper.ValidateStructIsPopulated(g); err != nil {
			return err
		}
		if _, ok := groups[g.Name]; ok {
			return fmt.Errorf("duplicate user group %q", g.Name)
		}
		groups[g.Name] = struct{}{}
		for _, member := range g.Users {
			if _, ok := users[member]; !ok {
				return fmt.Errorf("user group %q refers to unknown user %q", g.Name, member)
			}
		}
	}
	for _, rb := range u.RoleBindings {
		if err := helper.ValidateStructIsPopulated(rb); err != nil {
			return err
		}
	}
	if _, err := u.UserPermissions(); err != nil {
		return err
	}
	if err := u.Endpoints.validate(); err != nil {
		return err
	}
	datasets := make(map[string]struct{}, len(u.DataSets))
	for _, d := range u.DataSets {
		if _, ok := datasets[d.Name]; ok {
			return fmt.Errorf("duplicate dataset %q", d.Name)
		}
		datasets[d.Name] = struct{}{}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the templates and assets of d.
func (d *DataSet) Validate() error {
	if d.Name == "" {
		return errors.New("please supply values for dataset name")
	}
	templates := make(map[string]struct{}, len(d.DatumTemplates))
	for _, t := range d.DatumTemplates {
		if err := helper.ValidateStructIsPopulated(t); err != nil {
			return errors.Wrapf(err, "dataset %q", d.Name)
		}
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "dataset %q", d.Name)
		}
		if _, ok := templates[t.Name]; ok {
			return fmt.Errorf("dataset %q has duplicate datum template %q", d.Name, t.Name)
		}
		templates[t.Name] = struct{}{}
	}
	for _, name := range d.AssetNames() {
		a := d.Assets[name]
		if a.Name != name {
			return fmt.Errorf("dataset %q holds asset %q under key %q", d.Name, a.Name, name)
		}
		if a.TypeOrDefault() != AssetStaticDataTable {
			return fmt.Errorf("asset %q has unknown type %q", a.Name, a.Type)
		}
		if err := helper.ValidateStructIsPopulated(a); err != nil {
			return errors.Wrapf(err, "dataset %q asset %q", d.Name, a.Name)
		}
		t, err := d.TemplateForAsset(a)
		if err != nil {
			return err
		}
		if _, err := a.AttributesOf(t); err != nil {
			return err
		}
		if err := a.Setup.Validate(); err != nil {
			return errors.Wrapf(err, "dataset %q asset %q", d.Name, a.Name)
		}
	}
	return nil
}

func (e EndpointConfig) validate() error {
	for _, ep := range []interface{}{e.Alluxio, e.Presto, e.Ranger, e.Postgres, e.Minio} {
		if err := helper.ValidateStructIsPopulated(ep); err != nil {
			return errors.Wrap(err, "endpoints")
		}
	}
	return nil
}
