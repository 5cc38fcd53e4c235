/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package core

import (
	"fmt"
	"net/url"
	"os"

	"github.com/writeas/go-writeas/v2"
	"golang.org/x/term"
)

var Client *writeas.Client

// ReadPassword prompts for the account password on the terminal.
func ReadPassword() (string, error) {
	fmt.Println("Please enter your password:")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(password) == 0 {
		return "", fmt.Errorf("no password entered")
	}
	return string(password), nil
}

func SignIn(u, p, i string) error {
	if i == "" {
		fmt.Println("Logging in...")
		Client = writeas.NewClient()
		_, err := Client.LogIn(u, p)
		if err != nil {
			return err
		}
		fmt.Println("Logged in!")
		return nil
	}

	instance, err := url.Parse(i)
	if err != nil {
		return err
	}
	instance.Scheme = "https"
	instance.Path += "/api"

	fmt.Println("Logging in to", i)
	config := writeas.Config{URL: instance.String()}
	Client = writeas.NewClientWith(config)
	_, err = Client.LogIn(u, p)
	if err != nil {
		return err
	}
	fmt.Println("Logged in!")
	return nil
}

func SignOut() error {
	if Client == nil {
		return nil
	}
	fmt.Println("Logging out...")
	if err := Client.LogOut(); err != nil {
		return err
	}
	fmt.Println("Logged out!")
	return nil
}
