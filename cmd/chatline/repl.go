package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChamsBouzaiene/chatline/internal/api"
	"github.com/ChamsBouzaiene/chatline/internal/chat"
)

const replHelp = `Commands:
  /login [user]     log in (prompts for what's missing)
  /register [user]  create an account
  /list             refresh the conversation list
  /open N           open conversation number N
  /delete N         delete conversation number N (asks first)
  /new              start a new conversation
  /upload PATH      upload a document
  /whoami           show the current session
  /logout           log out and forget the session
  /quit             exit
Anything else is sent as a chat message.`

func runREPL(ctx context.Context, ctrl *chat.Controller, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, replHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, ctrl, scanner, out, line); quit {
				return nil
			}
			continue
		}

		// Failures are already rendered by the controller.
		_ = ctrl.Send(ctx, line)
	}
}

func runCommand(ctx context.Context, ctrl *chat.Controller, scanner *bufio.Scanner, out io.Writer, line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "/help":
		fmt.Fprintln(out, replHelp)

	case "/login":
		username := argOr(args, 0, "")
		if username == "" {
			username = promptDefault(scanner, out, "Username", ctrl.LoginPrefill())
		}
		password := prompt(scanner, out, "Password: ")
		if username == "" || password == "" {
			fmt.Fprintln(out, "Username and password are required.")
			break
		}
		_ = ctrl.Login(ctx, username, password)

	case "/register":
		username := argOr(args, 0, "")
		if username == "" {
			username = prompt(scanner, out, "Username: ")
		}
		password := prompt(scanner, out, "Password: ")
		if username == "" || password == "" {
			fmt.Fprintln(out, "Username and password are required.")
			break
		}
		_ = ctrl.Register(ctx, username, password)

	case "/list":
		_ = ctrl.Refresh(ctx)

	case "/open":
		if conv, ok := resolveConversation(ctrl, args, out); ok {
			_ = ctrl.Open(ctx, conv.ID)
		}

	case "/delete":
		conv, ok := resolveConversation(ctrl, args, out)
		if !ok {
			break
		}
		answer := prompt(scanner, out, fmt.Sprintf("Delete %q? [y/N]: ", conv.Title))
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			fmt.Fprintln(out, "Kept.")
			break
		}
		_ = ctrl.Delete(ctx, conv.ID)

	case "/new":
		ctrl.NewChat()

	case "/upload":
		if len(args) == 0 {
			fmt.Fprintln(out, "Usage: /upload PATH")
			break
		}
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(out, "Cannot open %s: %v\n", path, err)
			break
		}
		_ = ctrl.Upload(ctx, filepath.Base(path), f)
		f.Close()

	case "/whoami":
		if sess := ctrl.Session(); sess.Authenticated() {
			fmt.Fprintf(out, "Logged in as %s\n", sess.Username)
		} else {
			fmt.Fprintln(out, "Not logged in")
		}

	case "/logout":
		ctrl.Logout()

	case "/quit", "/exit":
		fmt.Fprintln(out, "Bye!")
		return true

	default:
		fmt.Fprintf(out, "Unknown command %s (try /help)\n", cmd)
	}
	return false
}

// resolveConversation maps a 1-based display index argument onto the
// directory's current render order.
func resolveConversation(ctrl *chat.Controller, args []string, out io.Writer) (api.Conversation, bool) {
	if len(args) == 0 {
		fmt.Fprintln(out, "Which one? Pass the number shown in the list.")
		return api.Conversation{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(out, "Not a number: %s\n", args[0])
		return api.Conversation{}, false
	}
	conv, ok := ctrl.ConversationAt(n)
	if !ok {
		fmt.Fprintf(out, "No conversation numbered %d. Run /list first.\n", n)
		return api.Conversation{}, false
	}
	return conv, true
}

func prompt(scanner *bufio.Scanner, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// promptDefault offers a default value (e.g. the username from a fresh
// registration) that an empty answer accepts.
func promptDefault(scanner *bufio.Scanner, out io.Writer, label, def string) string {
	if def == "" {
		return prompt(scanner, out, label+": ")
	}
	answer := prompt(scanner, out, fmt.Sprintf("%s [%s]: ", label, def))
	if answer == "" {
		return def
	}
	return answer
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}
