// Command inspect dumps the contents of a chatline Badger store as tables,
// for operator debugging. It opens the database read-only, so it is safe to
// run against a live deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"chatline/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	withBodies := flag.Bool("bodies", false, "Print full message bodies instead of a preview")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	printHeader("USERS")
	if err := dumpUsers(db); err != nil {
		log.Fatal(err)
	}

	printHeader("MESSAGES")
	if err := dumpMessages(db, *withBodies); err != nil {
		log.Fatal(err)
	}
}

func printHeader(title string) {
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(" == " + title + " == "))
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func dumpUsers(db *badger.DB) error {
	table := newTable([]string{"Seq", "Username", "Registered"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var user domain.User
				if err := json.Unmarshal(v, &user); err != nil {
					// Log the damaged key and keep going instead of aborting the dump
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					fmt.Sprintf("%d", user.Seq),
					user.Username,
					user.CreatedAt.Format("2006-01-02 15:04:05"),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func dumpMessages(db *badger.DB, withBodies bool) error {
	table := newTable([]string{"Key", "Sender", "Recipient", "Lang", "At", "Body"})

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var message domain.Message
				if err := json.Unmarshal(v, &message); err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}

				body := message.Body
				if !withBodies && len(body) > 40 {
					body = body[:40] + "..."
				}

				table.Append([]string{
					string(item.Key()),
					message.Sender,
					message.Recipient,
					message.Lang,
					message.CreatedAt.Format("15:04:05"),
					body,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	return badger.Open(opts)
}
