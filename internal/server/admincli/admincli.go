// Package admincli implements the interactive operator command that creates
// or promotes an administrator account.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/server/models"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// AdminEnsurer is implemented by services.UserService.
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error)
}

// Run prompts for email, name and password and makes the account an
// administrator. An empty password keeps the password of an existing account.
func Run(ctx context.Context, in io.Reader, out io.Writer, users AdminEnsurer) error {
	reader := bufio.NewReader(in)

	email, err := prompt(reader, out, "Enter admin email")
	if err != nil {
		return err
	}
	name, err := prompt(reader, out, "Enter name (ignored for existing accounts)")
	if err != nil {
		return err
	}

	fmt.Fprint(out, "Enter password (empty keeps the current one): ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer clear(pw)

	u, created, err := users.EnsureAdmin(ctx, name, email, string(pw))
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(out, "Created admin %s (id=%d)\n", u.Email, u.ID)
	} else {
		fmt.Fprintf(out, "Promoted %s (id=%d) to admin\n", u.Email, u.ID)
	}
	return nil
}

func prompt(reader *bufio.Reader, w io.Writer, text string) (string, error) {
	if _, err := fmt.Fprint(w, text+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
