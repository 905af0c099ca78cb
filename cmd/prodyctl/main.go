// Prody CLI - talk to the Prody daemon from the terminal
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/prody/prody/internal/core"
)

var (
	serverURL string

	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "prodyctl",
		Short: "Prody - your personal growth companion",
		Long: `Prody pairs journaling, vocabulary learning and letters to your
future self with an AI guide that speaks in the voice of a
philosopher of your choosing.

All data lives in your own Prody daemon.`,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8484", "daemon address")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(wisdomCmd())
	rootCmd.AddCommand(letterCmd())
	rootCmd.AddCommand(journalCmd())
	rootCmd.AddCommand(vocabCmd())
	rootCmd.AddCommand(xpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// api performs one JSON request against the daemon
func apiCall(method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, serverURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func prompt(label string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("prodyctl %s\n", version)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and your progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			var health struct {
				Status  string `json:"status"`
				AIReady bool   `json:"ai_ready"`
			}
			if err := apiCall("GET", "/api/v1/health", nil, &health); err != nil {
				return err
			}

			var stats struct {
				TotalXP      int `json:"total_xp"`
				Level        int `json:"level"`
				Streak       int `json:"streak"`
				WordsLearned int `json:"words_learned"`
			}
			if err := apiCall("GET", "/api/v1/stats", nil, &stats); err != nil {
				return err
			}

			fmt.Printf("✅ Daemon: %s\n", health.Status)
			if health.AIReady {
				fmt.Println("✅ AI: configured")
			} else {
				fmt.Println("⚠️  AI: not configured, run 'prodyctl setup'")
			}
			fmt.Printf("⭐ Level %d (%d XP)\n", stats.Level, stats.TotalXP)
			fmt.Printf("🔥 Journal streak: %d days\n", stats.Streak)
			fmt.Printf("📖 Words learned: %d\n", stats.WordsLearned)
			return nil
		},
	}
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the Gemini API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("🔑 Paste your Gemini API key (input is hidden).")
			fmt.Print("API key: ")
			key, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return err
			}
			if len(bytes.TrimSpace(key)) == 0 {
				return fmt.Errorf("no key entered")
			}

			model := prompt("Model (empty keeps the current one): ")

			body := map[string]string{"api_key": string(bytes.TrimSpace(key))}
			if model != "" {
				body["model"] = model
			}
			if err := apiCall("PUT", "/api/v1/settings", body, nil); err != nil {
				return err
			}

			fmt.Println("✅ AI configured")
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	var persona string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk with your AI guide",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Reply string `json:"reply"`
			}
			err := apiCall("POST", "/api/v1/chat", map[string]any{
				"message": strings.Join(args, " "),
				"persona": persona,
			}, &resp)
			if err != nil {
				return err
			}

			fmt.Println(resp.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&persona, "persona", string(core.DefaultPersona), "buddha, stoic, taoist, existential or zen")
	return cmd
}

func wisdomCmd() *cobra.Command {
	var persona string

	cmd := &cobra.Command{
		Use:   "wisdom",
		Short: "A short thought for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Message string `json:"message"`
			}
			if err := apiCall("GET", "/api/v1/wisdom?persona="+persona, nil, &resp); err != nil {
				return err
			}

			fmt.Println(resp.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&persona, "persona", string(core.DefaultPersona), "buddha, stoic, taoist, existential or zen")
	return cmd
}

func letterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "letter",
		Short: "Letters to your future self",
	}

	write := &cobra.Command{
		Use:   "write",
		Short: "Write a new letter",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("✉️  A letter to your future self. End with an empty line.")
			subject := prompt("Subject (optional): ")

			var lines []string
			reader := bufio.NewReader(os.Stdin)
			for {
				line, _ := reader.ReadString('\n')
				line = strings.TrimRight(line, "\n")
				if line == "" {
					break
				}
				lines = append(lines, line)
			}
			content := strings.Join(lines, "\n")

			daysStr := prompt("Deliver in how many days? (7/30/182/365): ")
			days, err := strconv.Atoi(daysStr)
			if err != nil || days < 0 {
				return fmt.Errorf("invalid day count %q", daysStr)
			}

			var letter core.FutureSelfLetter
			err = apiCall("POST", "/api/v1/letters/", map[string]any{
				"content":       content,
				"subject":       subject,
				"days_from_now": days,
			}, &letter)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Sealed. It arrives on %s.\n", letter.DeliveryAt.Local().Format("Jan 2, 2006"))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Letters []core.FutureSelfLetter `json:"letters"`
			}
			if err := apiCall("GET", "/api/v1/letters/", nil, &resp); err != nil {
				return err
			}

			if len(resp.Letters) == 0 {
				fmt.Println("No letters yet. Write one with 'prodyctl letter write'.")
				return nil
			}
			for _, l := range resp.Letters {
				state := "⏳ sealed"
				if l.Opened {
					state = "📖 opened"
				} else if l.Delivered {
					state = "📬 delivered"
				}
				subject := l.Subject
				if subject == "" {
					subject = "(no subject)"
				}
				fmt.Printf("%s  %s  %s  %s\n", state, l.ID, l.DeliveryAt.Local().Format("2006-01-02"), subject)
			}
			return nil
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Open a delivered letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var letter core.FutureSelfLetter
			if err := apiCall("POST", "/api/v1/letters/"+args[0]+"/view", nil, &letter); err != nil {
				return err
			}

			if letter.Subject != "" {
				fmt.Printf("── %s ──\n\n", letter.Subject)
			}
			fmt.Println(letter.Content)
			fmt.Printf("\n(written %s)\n", letter.CreatedAt.Local().Format("Jan 2, 2006"))
			if letter.Analysis != "" {
				fmt.Printf("\n💭 %s\n", letter.Analysis)
			}
			if letter.Encouragement != "" {
				fmt.Printf("🌱 %s\n", letter.Encouragement)
			}
			return nil
		},
	}

	cmd.AddCommand(write, list, read)
	return cmd
}

func journalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Your journal",
	}

	var mood string
	write := &cobra.Command{
		Use:   "write",
		Short: "Write a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("📓 What's on your mind? End with an empty line.")

			var lines []string
			reader := bufio.NewReader(os.Stdin)
			for {
				line, _ := reader.ReadString('\n')
				line = strings.TrimRight(line, "\n")
				if line == "" {
					break
				}
				lines = append(lines, line)
			}

			var entry core.JournalEntry
			err := apiCall("POST", "/api/v1/journal/", map[string]any{
				"content": strings.Join(lines, "\n"),
				"mood":    mood,
			}, &entry)
			if err != nil {
				return err
			}

			fmt.Println("✅ Saved.")
			return nil
		},
	}
	write.Flags().StringVar(&mood, "mood", "", "happy, calm, neutral, anxious, sad, grateful or stressed")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Entries []core.JournalEntry `json:"entries"`
			}
			if err := apiCall("GET", "/api/v1/journal/?limit=10", nil, &resp); err != nil {
				return err
			}

			for _, e := range resp.Entries {
				first := e.Content
				if i := strings.IndexByte(first, '\n'); i >= 0 {
					first = first[:i]
				}
				if len(first) > 60 {
					first = first[:57] + "..."
				}
				fmt.Printf("%s  %s  %s\n", e.CreatedAt.Local().Format("2006-01-02"), e.ID, first)
			}
			return nil
		},
	}

	var persona string
	analyze := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Ask your guide to reflect on an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry core.JournalEntry
			err := apiCall("POST", "/api/v1/journal/"+args[0]+"/analyze", map[string]any{
				"persona": persona,
			}, &entry)
			if err != nil {
				return err
			}

			fmt.Printf("📝 %s\n\n", entry.Summary)
			fmt.Println(entry.Reflection)
			if entry.Suggestion != "" {
				fmt.Printf("\n👉 %s\n", entry.Suggestion)
			}
			if len(entry.Themes) > 0 {
				fmt.Printf("\n🏷  %s\n", strings.Join(entry.Themes, ", "))
			}
			return nil
		},
	}
	analyze.Flags().StringVar(&persona, "persona", string(core.DefaultPersona), "buddha, stoic, taoist, existential or zen")

	cmd.AddCommand(write, list, analyze)
	return cmd
}

func vocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Vocabulary you are learning",
	}

	add := &cobra.Command{
		Use:   "add <word> <meaning...>",
		Short: "Add a word",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var word core.VocabWord
			err := apiCall("POST", "/api/v1/vocab/", map[string]any{
				"word":    args[0],
				"meaning": strings.Join(args[1:], " "),
			}, &word)
			if err != nil {
				return err
			}

			fmt.Printf("✅ Added %q (%s)\n", word.Word, word.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your words",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Words []core.VocabWord `json:"words"`
			}
			if err := apiCall("GET", "/api/v1/vocab/", nil, &resp); err != nil {
				return err
			}

			for _, w := range resp.Words {
				mark := " "
				if w.Learned {
					mark = "✓"
				}
				fmt.Printf("%s %-20s %s\n", mark, w.Word, w.Meaning)
			}
			return nil
		},
	}

	learned := &cobra.Command{
		Use:   "learned <id>",
		Short: "Mark a word as learned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var word core.VocabWord
			if err := apiCall("POST", "/api/v1/vocab/"+args[0]+"/learned", nil, &word); err != nil {
				return err
			}

			fmt.Printf("🎉 %q learned\n", word.Word)
			return nil
		},
	}

	enhance := &cobra.Command{
		Use:   "enhance <id>",
		Short: "Get a mnemonic and usage notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var word core.VocabWord
			if err := apiCall("POST", "/api/v1/vocab/"+args[0]+"/enhance", nil, &word); err != nil {
				return err
			}

			fmt.Printf("🧠 %s\n", word.Mnemonic)
			if word.UsageNotes != "" {
				fmt.Printf("✍️  %s\n", word.UsageNotes)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list, learned, enhance)
	return cmd
}

func xpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "xp",
		Short: "Show XP, level and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			var summary struct {
				Progress struct {
					TotalXP     int `json:"total_xp"`
					Level       int `json:"level"`
					LevelXP     int `json:"level_xp"`
					NextLevelXP int `json:"next_level_xp"`
				} `json:"progress"`
				Badges []struct {
					Label    string `json:"label"`
					Emoji    string `json:"emoji"`
					Earned   bool   `json:"earned"`
					Progress int    `json:"progress"`
					Target   int    `json:"target"`
				} `json:"badges"`
			}
			if err := apiCall("GET", "/api/v1/rewards/", nil, &summary); err != nil {
				return err
			}

			p := summary.Progress
			fmt.Printf("⭐ Level %d, %d XP (%d/%d into next level)\n\n", p.Level, p.TotalXP, p.LevelXP, p.NextLevelXP)
			for _, b := range summary.Badges {
				state := fmt.Sprintf("%d/%d", b.Progress, b.Target)
				if b.Earned {
					state = "earned"
				}
				fmt.Printf("%s %-16s %s\n", b.Emoji, b.Label, state)
			}
			return nil
		},
	}
}
