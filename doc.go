// Package tempmail provides a Go client for a disposable email service.
//
// A Client owns one mailbox at a time. It provisions the mailbox, lists
// the messages received so far and blocks until a new one arrives.
//
// Basic usage:
//
//	client, err := tempmail.New(tempmail.WithTimeout(2 * time.Minute))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Provision a mailbox
//	address, err := client.GenerateEmail(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Send mail to:", address)
//
//	// Wait for a message
//	msg, err := client.WaitForNewMessage(ctx)
//	if errors.Is(err, tempmail.ErrWaitTimeout) {
//	    log.Fatal("nothing arrived")
//	}
//
//	fmt.Println("Subject:", msg.Subject)
//
// New messages are detected by count growth: the wait records how many
// messages the mailbox holds, then polls until a listing reports more and
// returns the last message of that listing. Deletions and edits of existing
// messages are not observed.
package tempmail
