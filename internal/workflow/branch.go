package workflow

import (
	"fmt"
	"path/filepath"

	"github.com/ariel-frischer/modkit/internal/manifest"
	"github.com/ariel-frischer/modkit/internal/version"
)

// BranchResult describes a finished branch switch.
type BranchResult struct {
	Branch  string
	Version version.Version
	Link    string
}

// Branch checks out branch, or asks for one when branch is empty, then
// relinks the mod folder and the workspace file to the version found on it.
func (r *Runner) Branch(branch string) (*BranchResult, error) {
	repo, err := r.openRepo(r.Layout.ProjectDir)
	if err != nil {
		return nil, err
	}

	if branch == "" {
		if branch, err = r.chooseBranch(repo); err != nil {
			return nil, err
		}
	} else if err := r.confirm(fmt.Sprintf("Check out %s?", branch)); err != nil {
		return nil, err
	}

	res := &BranchResult{Branch: branch}
	var s steps
	err = s.run("checkout", func() error {
		if err := repo.Checkout(branch); err != nil {
			return err
		}
		r.progress.Success("checked out " + branch)
		return nil
	})
	if err == nil {
		err = s.run("relink mod folder", func() error {
			v, err := manifest.ReadVersion(r.Layout.Manifest)
			if err != nil {
				return err
			}
			res.Version = v
			link, err := r.syncModLink(v)
			if err != nil {
				return err
			}
			res.Link = link
			r.progress.Success("mod folder linked as " + filepath.Base(link))
			return nil
		})
	}
	if err == nil && r.Layout.WorkspaceFile != "" {
		err = s.run("update workspace file", func() error {
			changed, err := r.updateWorkspaceFile(res.Version)
			if changed {
				r.progress.Success(filepath.Base(r.Layout.WorkspaceFile) + " updated")
			}
			return err
		})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// chooseBranch lists branches as a numbered menu. Choosing is the
// confirmation, so no separate question is asked.
func (r *Runner) chooseBranch(repo Repository) (string, error) {
	branches, err := repo.Branches()
	if err != nil {
		return "", err
	}
	if len(branches) == 0 {
		return "", fmt.Errorf("repository has no branches")
	}

	current, err := repo.CurrentBranch()
	if err != nil {
		return "", err
	}

	options := make([]string, len(branches))
	for i, b := range branches {
		label := b.Name
		if b.IsRemote {
			label += " (" + b.Remote + ")"
		}
		if b.Name == current {
			label += " *"
		}
		options[i] = label
	}

	i, err := r.prompter.Choose("Which branch?", options)
	if err != nil {
		return "", err
	}
	return branches[i].Name, nil
}
